package synth

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// emailDomains is the pool of mail hosts for generated contacts.
var emailDomains = []string{
	"gmail.com", "outlook.com", "protonmail.com", "fastmail.com",
	"example.com", "company.org", "corp.net", "business.io",
}

// companySizeWeights skews the client base toward smaller companies.
var companySizeWeights = map[string]float64{
	"1-10":    0.30,
	"11-50":   0.30,
	"51-200":  0.20,
	"201-500": 0.15,
	"500+":    0.05,
}

// seniorityWeights shapes the team pyramid.
var seniorityWeights = map[string]float64{
	"Junior":    0.25,
	"Mid":       0.30,
	"Senior":    0.25,
	"Lead":      0.13,
	"Principal": 0.07,
}

// Base generates the root tables from explicit correlation rules.
type Base struct {
	rng    *rand.Rand
	faker  *gofakeit.Faker
	reg    *schema.Registry
	logger *slog.Logger
	now    time.Time
}

// NewBase creates a base-record synthesizer. The faker is seeded from the
// supplied generator so a fixed seed fixes the full output.
func NewBase(rng *rand.Rand, reg *schema.Registry, logger *slog.Logger, now time.Time) *Base {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Base{
		rng:    rng,
		faker:  gofakeit.New(rng.Uint64()),
		reg:    reg,
		logger: logger,
		now:    now,
	}
}

// GenerateClients produces count client rows. Revenue is drawn inside the
// bracket dictated by company size, the retainer is a bounded function of
// revenue, and the risk score is clamped into [0.1, 1.0].
func (b *Base) GenerateClients(count int) (*table.Table, error) {
	def, ok := b.reg.Table(schema.TableClients)
	if !ok {
		return nil, fmt.Errorf("schema registry has no %s table", schema.TableClients)
	}

	b.logger.Debug("generating base table", "table", def.Name, "count", count)

	tbl := table.New(def.Name, def.ColumnNames())
	for i := 0; i < count; i++ {
		size, err := WeightedChoice(b.rng, schema.CompanySizes, companySizeWeights)
		if err != nil {
			return nil, err
		}

		bracket := schema.RevenueBrackets[size]
		revenue := round2(logUniform(b.rng, bracket.Min, bracket.Max))
		retainer := round2(clamp(revenue*uniform(b.rng, 0.0010, 0.0040), 1_000, 150_000))
		risk := round2(normalClamped(b.rng, 0.45, 0.18, 0.1, 1.0))

		first := b.faker.FirstName()
		last := b.faker.LastName()

		row := []any{
			schema.FormatID(def.Prefix, i),
			b.faker.Company(),
			pick(b.rng, schema.Industries),
			size,
			revenue,
			pick(b.rng, schema.Countries),
			first + " " + last,
			contactEmail(first, last, i, pick(b.rng, emailDomains)),
			b.faker.Phone(),
			pick(b.rng, schema.AcquisitionChannels),
			risk,
			retainer,
			dateBetween(b.rng, b.now.AddDate(-8, 0, 0), b.now.AddDate(0, -1, 0)),
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// GenerateTeamMembers produces count team-member rows. The hourly rate is
// drawn from the seniority range with a premium multiplier for specialist
// roles, and skills derive from the role.
func (b *Base) GenerateTeamMembers(count int) (*table.Table, error) {
	def, ok := b.reg.Table(schema.TableTeamMembers)
	if !ok {
		return nil, fmt.Errorf("schema registry has no %s table", schema.TableTeamMembers)
	}

	b.logger.Debug("generating base table", "table", def.Name, "count", count)

	tbl := table.New(def.Name, def.ColumnNames())
	for i := 0; i < count; i++ {
		role := pick(b.rng, schema.Roles)
		seniority, err := WeightedChoice(b.rng, schema.Seniorities, seniorityWeights)
		if err != nil {
			return nil, err
		}

		rates := schema.HourlyRates[seniority]
		rate := uniform(b.rng, rates.Min, rates.Max)
		if premium, ok := schema.SpecialistRoles[role]; ok {
			rate *= premium
		}
		rate = round2(clamp(rate, 25, 250))

		skillPool := schema.RoleSkills[role]
		skills := pickN(b.rng, skillPool, 3+b.rng.Intn(3))

		first := b.faker.FirstName()
		last := b.faker.LastName()

		row := []any{
			schema.FormatID(def.Prefix, i),
			first + " " + last,
			contactEmail(first, last, i, pick(b.rng, emailDomains)),
			role,
			seniority,
			rate,
			strings.Join(skills, "; "),
			round2(uniform(b.rng, 0.2, 1.0)),
			dateBetween(b.rng, b.now.AddDate(-6, 0, 0), b.now.AddDate(0, -1, 0)),
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// contactEmail builds a unique lowercase address from a name and row index.
func contactEmail(first, last string, i int, domain string) string {
	return fmt.Sprintf("%s.%s.%d@%s", strings.ToLower(first), strings.ToLower(last), i, domain)
}
