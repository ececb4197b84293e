package synth

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

var projectStatusWeights = map[string]float64{
	"Planning":    0.15,
	"In Progress": 0.35,
	"On Hold":     0.10,
	"Completed":   0.30,
	"Cancelled":   0.10,
}

var ticketStatusWeights = map[string]float64{
	"Open":        0.20,
	"In Progress": 0.20,
	"In Review":   0.10,
	"Blocked":     0.05,
	"Done":        0.45,
}

var assignmentRoleWeights = map[string]float64{
	"Lead":        0, // exactly one lead per project, assigned explicitly
	"Contributor": 0.80,
	"Reviewer":    0.20,
}

// roleHourWeights drive the split of a project's estimated hours across
// its assignments.
var roleHourWeights = map[string]float64{
	"Lead":        1.5,
	"Contributor": 1.0,
	"Reviewer":    0.5,
}

// Dependent generates child tables from already-produced (and expanded)
// parent tables. Every generated row references a parent id present in
// the supplied parent table.
type Dependent struct {
	rng    *rand.Rand
	faker  *gofakeit.Faker
	reg    *schema.Registry
	logger *slog.Logger
	now    time.Time
}

// NewDependent creates a dependent-record synthesizer.
func NewDependent(rng *rand.Rand, reg *schema.Registry, logger *slog.Logger, now time.Time) *Dependent {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Dependent{
		rng:    rng,
		faker:  gofakeit.New(rng.Uint64()),
		reg:    reg,
		logger: logger,
		now:    now,
	}
}

// GenerateProjects produces count project rows. The owning client is
// drawn weighted by annual revenue (independent draws, a client can own
// many projects), and the budget derives from the client's retainer and
// the project's complexity.
func (d *Dependent) GenerateProjects(clients *table.Table, count int) (*table.Table, error) {
	def, ok := d.reg.Table(schema.TableProjects)
	if !ok {
		return nil, fmt.Errorf("schema registry has no %s table", schema.TableProjects)
	}
	if clients.NumRows() == 0 {
		return nil, fmt.Errorf("cannot generate projects: client table is empty")
	}

	d.logger.Debug("generating dependent table", "table", def.Name, "count", count, "parents", clients.NumRows())

	weights, err := rowWeights(clients, "annual_revenue")
	if err != nil {
		return nil, err
	}

	tbl := table.New(def.Name, def.ColumnNames())
	for i := 0; i < count; i++ {
		parent, err := WeightedIndex(d.rng, weights)
		if err != nil {
			return nil, fmt.Errorf("selecting client for project %d: %w", i, err)
		}

		clientID, _ := clients.Value(parent, "client_id")
		retainerVal, _ := clients.Value(parent, "monthly_retainer")
		retainer, ok := table.AsFloat(retainerVal)
		if !ok {
			return nil, fmt.Errorf("client row %d has non-numeric monthly_retainer", parent)
		}

		complexity := 1 + d.rng.Intn(10)
		// Complexity scales the budget linearly from 0.8x at 1 to 1.5x at 10.
		factor := 0.8 + float64(complexity-1)*(1.5-0.8)/9
		budgetOriginal := round2(retainer * uniform(d.rng, 0.5, 3.0) * factor)
		budgetFinal := round2(budgetOriginal * uniform(d.rng, 0.9, 1.3))

		hoursEstimated := math.Max(10, round2(budgetOriginal/uniform(d.rng, 80, 150)))

		status, err := WeightedChoice(d.rng, schema.ProjectStatuses, projectStatusWeights)
		if err != nil {
			return nil, err
		}

		start := dateBetween(d.rng, d.now.AddDate(-3, 0, 0), d.now.AddDate(0, -1, 0))
		plannedDays := 30 + d.rng.Intn(330)
		plannedEnd := start.AddDate(0, 0, plannedDays)

		var actualEnd any
		var hoursActual any
		if status == "Completed" {
			days := int(float64(plannedDays) * uniform(d.rng, 0.7, 1.3))
			if days < 7 {
				days = 7
			}
			actualEnd = start.AddDate(0, 0, days)
			hoursActual = round2(hoursEstimated * uniform(d.rng, 0.8, 1.4))
		}

		teamSize := 2 + complexity/3 + d.rng.Intn(3) - 1
		teamSize = int(clamp(float64(teamSize), 2, 10))

		projectType := pick(d.rng, schema.ProjectTypes)

		row := []any{
			schema.FormatID(def.Prefix, i),
			clientID,
			fmt.Sprintf("%s %s", d.faker.BuzzWord(), projectType),
			projectType,
			pick(d.rng, schema.TechStacks[projectType]),
			status,
			pick(d.rng, schema.Priorities),
			start,
			plannedEnd,
			actualEnd,
			budgetOriginal,
			budgetFinal,
			hoursEstimated,
			hoursActual,
			teamSize,
			complexity,
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// GenerateAssignments produces team_size assignments per project. Members
// are drawn weighted by availability; allocated hours split the project's
// estimated hours by role weight so their sum approximates the estimate.
func (d *Dependent) GenerateAssignments(projects, members *table.Table) (*table.Table, error) {
	def, ok := d.reg.Table(schema.TableAssignments)
	if !ok {
		return nil, fmt.Errorf("schema registry has no %s table", schema.TableAssignments)
	}
	if members.NumRows() == 0 {
		return nil, fmt.Errorf("cannot generate assignments: team_members table is empty")
	}

	memberWeights, err := rowWeights(members, "availability")
	if err != nil {
		return nil, err
	}

	tbl := table.New(def.Name, def.ColumnNames())
	seq := 0
	for p := 0; p < projects.NumRows(); p++ {
		projectID, _ := projects.Value(p, "project_id")
		statusVal, _ := projects.Value(p, "status")
		status, _ := asString(statusVal)

		sizeVal, _ := projects.Value(p, "team_size")
		size, ok := asInt(sizeVal)
		if !ok || size < 1 {
			size = 2
		}
		if size > members.NumRows() {
			size = members.NumRows()
		}

		estVal, _ := projects.Value(p, "hours_estimated")
		estimated, ok := table.AsFloat(estVal)
		if !ok {
			estimated = 100
		}

		team, err := d.drawTeam(memberWeights, size)
		if err != nil {
			return nil, fmt.Errorf("drawing team for project row %d: %w", p, err)
		}

		roles := make([]string, len(team))
		var weightSum float64
		for i := range team {
			if i == 0 {
				roles[i] = "Lead"
			} else {
				roles[i], err = WeightedChoice(d.rng, schema.AssignmentRoles, assignmentRoleWeights)
				if err != nil {
					return nil, err
				}
			}
			weightSum += roleHourWeights[roles[i]]
		}

		for i, m := range team {
			memberID, _ := members.Value(m, "member_id")
			allocated := round2(estimated * roleHourWeights[roles[i]] / weightSum)
			if allocated < 1 {
				allocated = 1
			}

			row := []any{
				schema.FormatID(def.Prefix, seq),
				projectID,
				memberID,
				roles[i],
				allocated,
				round2(allocated * loggedFraction(d.rng, status)),
			}
			if err := tbl.AppendRow(row); err != nil {
				return nil, err
			}
			seq++
		}
	}
	return tbl, nil
}

// drawTeam selects size distinct member rows, weighted by availability.
// Repeated draws are rejected; after too many collisions the remaining
// slots are filled sequentially.
func (d *Dependent) drawTeam(weights []float64, size int) ([]int, error) {
	chosen := make(map[int]struct{}, size)
	team := make([]int, 0, size)
	for tries := 0; len(team) < size && tries < size*20; tries++ {
		i, err := WeightedIndex(d.rng, weights)
		if err != nil {
			return nil, err
		}
		if _, dup := chosen[i]; dup {
			continue
		}
		chosen[i] = struct{}{}
		team = append(team, i)
	}
	for i := 0; len(team) < size && i < len(weights); i++ {
		if _, dup := chosen[i]; dup {
			continue
		}
		chosen[i] = struct{}{}
		team = append(team, i)
	}
	return team, nil
}

func loggedFraction(rng *rand.Rand, projectStatus string) float64 {
	switch projectStatus {
	case "Completed":
		return uniform(rng, 0.85, 1.15)
	case "In Progress":
		return uniform(rng, 0.2, 0.9)
	case "Planning":
		return 0
	default:
		return uniform(rng, 0, 0.6)
	}
}

// GenerateTickets produces max(3, hours_estimated/20) tickets per project.
// Assignees come from the project's own assignments when available.
func (d *Dependent) GenerateTickets(projects, members, assignments *table.Table) (*table.Table, error) {
	def, ok := d.reg.Table(schema.TableTickets)
	if !ok {
		return nil, fmt.Errorf("schema registry has no %s table", schema.TableTickets)
	}
	if members.NumRows() == 0 {
		return nil, fmt.Errorf("cannot generate tickets: team_members table is empty")
	}

	memberWeights, err := rowWeights(members, "availability")
	if err != nil {
		return nil, err
	}

	// project_id -> member ids assigned to it
	assigned := make(map[string][]string)
	if assignments != nil {
		for r := 0; r < assignments.NumRows(); r++ {
			pidVal, _ := assignments.Value(r, "project_id")
			midVal, _ := assignments.Value(r, "member_id")
			pid, okP := asString(pidVal)
			mid, okM := asString(midVal)
			if okP && okM {
				assigned[pid] = append(assigned[pid], mid)
			}
		}
	}

	tbl := table.New(def.Name, def.ColumnNames())
	seq := 0
	for p := 0; p < projects.NumRows(); p++ {
		projectIDVal, _ := projects.Value(p, "project_id")
		projectID, _ := asString(projectIDVal)

		estVal, _ := projects.Value(p, "hours_estimated")
		estimated, ok := table.AsFloat(estVal)
		if !ok {
			estimated = 100
		}

		startVal, _ := projects.Value(p, "start_date")
		start, ok := asTime(startVal)
		if !ok {
			start = d.now.AddDate(-1, 0, 0)
		}

		count := int(estimated / 20)
		if count < 3 {
			count = 3
		}

		pool := assigned[projectID]
		for i := 0; i < count; i++ {
			var assignee any
			if len(pool) > 0 {
				assignee = pool[d.rng.Intn(len(pool))]
			} else {
				m, err := WeightedIndex(d.rng, memberWeights)
				if err != nil {
					return nil, err
				}
				assignee, _ = members.Value(m, "member_id")
			}

			points := pickInt(d.rng, schema.StoryPoints)
			status, err := WeightedChoice(d.rng, schema.TicketStatuses, ticketStatusWeights)
			if err != nil {
				return nil, err
			}

			created := dateBetween(d.rng, start, d.now)
			var completed any
			var actualHours any
			if status == "Done" {
				done := created.AddDate(0, 0, 1+d.rng.Intn(45))
				if done.After(d.now) {
					done = truncateDay(d.now)
				}
				if !done.After(created) {
					done = created.AddDate(0, 0, 1)
				}
				completed = done
				actualHours = round2(float64(points) * uniform(d.rng, 1.0, 4.0))
			}

			row := []any{
				schema.FormatID(def.Prefix, seq),
				projectIDVal,
				assignee,
				pick(d.rng, schema.TicketTypes),
				pick(d.rng, schema.Priorities),
				status,
				points,
				round2(float64(points) * uniform(d.rng, 1.5, 3.0)),
				actualHours,
				created,
				completed,
			}
			if err := tbl.AppendRow(row); err != nil {
				return nil, err
			}
			seq++
		}
	}
	return tbl, nil
}

// GenerateInvoices produces clamp(retainer/2500, 2, 20) invoices per
// client. Seventy percent reference one of the client's projects; net
// amount is always gross minus tax.
func (d *Dependent) GenerateInvoices(clients, projects *table.Table) (*table.Table, error) {
	def, ok := d.reg.Table(schema.TableInvoices)
	if !ok {
		return nil, fmt.Errorf("schema registry has no %s table", schema.TableInvoices)
	}

	// client_id -> project ids owned by it
	owned := make(map[string][]string)
	if projects != nil {
		for r := 0; r < projects.NumRows(); r++ {
			cidVal, _ := projects.Value(r, "client_id")
			pidVal, _ := projects.Value(r, "project_id")
			cid, okC := asString(cidVal)
			pid, okP := asString(pidVal)
			if okC && okP {
				owned[cid] = append(owned[cid], pid)
			}
		}
	}

	tbl := table.New(def.Name, def.ColumnNames())
	seq := 0
	for c := 0; c < clients.NumRows(); c++ {
		clientIDVal, _ := clients.Value(c, "client_id")
		clientID, _ := asString(clientIDVal)

		retainerVal, _ := clients.Value(c, "monthly_retainer")
		retainer, ok := table.AsFloat(retainerVal)
		if !ok {
			retainer = 5_000
		}

		count := int(clamp(retainer/2_500, 2, 20))
		for i := 0; i < count; i++ {
			var projectID any
			if pool := owned[clientID]; len(pool) > 0 && d.rng.Float64() < 0.7 {
				projectID = pool[d.rng.Intn(len(pool))]
			}

			issue := dateBetween(d.rng, d.now.AddDate(-2, 0, 0), d.now)
			gross := math.Max(100, round2(retainer*uniform(d.rng, 0.3, 1.5)))
			tax := round2(gross * 0.20)

			status, err := WeightedChoice(d.rng, schema.PaymentStatuses, schema.PaymentStatusWeights)
			if err != nil {
				return nil, err
			}
			var paymentDate any
			if status == "Paid" {
				paymentDate = issue.AddDate(0, 0, 5+d.rng.Intn(70))
			}

			row := []any{
				schema.FormatID(def.Prefix, seq),
				clientIDVal,
				projectID,
				pick(d.rng, schema.InvoiceTypes),
				issue,
				issue.AddDate(0, 0, 30),
				gross,
				tax,
				round2(gross - tax),
				status,
				paymentDate,
			}
			if err := tbl.AppendRow(row); err != nil {
				return nil, err
			}
			seq++
		}
	}
	return tbl, nil
}

// GenerateContracts produces one to three contracts per client. Contract
// value derives from the retainer and term; status derives from the
// contract dates relative to now.
func (d *Dependent) GenerateContracts(clients *table.Table) (*table.Table, error) {
	def, ok := d.reg.Table(schema.TableContracts)
	if !ok {
		return nil, fmt.Errorf("schema registry has no %s table", schema.TableContracts)
	}

	termMonths := []int{6, 12, 24}

	tbl := table.New(def.Name, def.ColumnNames())
	seq := 0
	for c := 0; c < clients.NumRows(); c++ {
		clientID, _ := clients.Value(c, "client_id")

		retainerVal, _ := clients.Value(c, "monthly_retainer")
		retainer, ok := table.AsFloat(retainerVal)
		if !ok {
			retainer = 5_000
		}

		count := 1 + d.rng.Intn(3)
		for i := 0; i < count; i++ {
			contractType := pick(d.rng, schema.ContractTypes)
			start := dateBetween(d.rng, d.now.AddDate(-3, 0, 0), d.now.AddDate(0, 2, 0))
			months := pickInt(d.rng, termMonths)
			end := start.AddDate(0, months, 0)

			var value float64
			if contractType != "NDA" {
				value = round2(retainer * float64(months) * uniform(d.rng, 0.8, 1.2))
			}

			row := []any{
				schema.FormatID(def.Prefix, seq),
				clientID,
				contractType,
				start,
				end,
				value,
				pick(d.rng, schema.RenewalTerms),
				contractStatus(start, end, d.now),
			}
			if err := tbl.AppendRow(row); err != nil {
				return nil, err
			}
			seq++
		}
	}
	return tbl, nil
}

// contractStatus derives the status deterministically from the contract
// dates relative to now.
func contractStatus(start, end, now time.Time) string {
	switch {
	case start.After(now):
		return "Pending"
	case !end.After(now):
		return "Expired"
	default:
		return "Active"
	}
}
