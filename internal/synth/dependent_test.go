package synth

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

func newTestDependent(seed int64) *Dependent {
	return NewDependent(rand.New(rand.NewSource(seed)), schema.Default(), nil, testNow())
}

// fixtures returns a small generated client and member table.
func fixtures(t *testing.T, clients, members int) (*table.Table, *table.Table) {
	t.Helper()
	base := newTestBase(1000)
	ct, err := base.GenerateClients(clients)
	require.NoError(t, err)
	mt, err := base.GenerateTeamMembers(members)
	require.NoError(t, err)
	return ct, mt
}

func pkSet(t *testing.T, tbl *table.Table, column string) map[string]struct{} {
	t.Helper()
	ids, err := tbl.StringColumn(column)
	require.NoError(t, err)
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestGenerateProjects_ForeignKeysResolve(t *testing.T) {
	clients, _ := fixtures(t, 30, 10)
	projects, err := newTestDependent(1).GenerateProjects(clients, 200)
	require.NoError(t, err)
	require.Equal(t, 200, projects.NumRows())

	clientIDs := pkSet(t, clients, "client_id")
	refs, err := projects.StringColumn("client_id")
	require.NoError(t, err)
	require.Len(t, refs, 200)
	for _, id := range refs {
		assert.Contains(t, clientIDs, id)
	}
}

func TestGenerateProjects_BudgetWithinRetainerEnvelope(t *testing.T) {
	clients, _ := fixtures(t, 20, 10)
	projects, err := newTestDependent(2).GenerateProjects(clients, 300)
	require.NoError(t, err)

	// client_id -> retainer
	retainers := make(map[string]float64)
	for r := 0; r < clients.NumRows(); r++ {
		idVal, _ := clients.Value(r, "client_id")
		retVal, _ := clients.Value(r, "monthly_retainer")
		ret, _ := table.AsFloat(retVal)
		retainers[idVal.(string)] = ret
	}

	for r := 0; r < projects.NumRows(); r++ {
		cidVal, _ := projects.Value(r, "client_id")
		retainer := retainers[cidVal.(string)]

		budgetVal, _ := projects.Value(r, "budget_original")
		budget, ok := table.AsFloat(budgetVal)
		require.True(t, ok)

		// budget = retainer * U(0.5, 3.0) * complexity factor in [0.8, 1.5]
		assert.GreaterOrEqual(t, budget, retainer*0.5*0.8-1, "row %d", r)
		assert.LessOrEqual(t, budget, retainer*3.0*1.5+1, "row %d", r)
	}
}

func TestGenerateProjects_ActualEndOnlyWhenCompleted(t *testing.T) {
	clients, _ := fixtures(t, 20, 10)
	projects, err := newTestDependent(3).GenerateProjects(clients, 300)
	require.NoError(t, err)

	var sawCompleted bool
	for r := 0; r < projects.NumRows(); r++ {
		statusVal, _ := projects.Value(r, "status")
		endVal, _ := projects.Value(r, "actual_end_date")

		if statusVal.(string) == "Completed" {
			sawCompleted = true
			require.NotNil(t, endVal, "row %d: completed project needs actual_end_date", r)

			startVal, _ := projects.Value(r, "start_date")
			start, ok := asTime(startVal)
			require.True(t, ok)
			end, ok := asTime(endVal)
			require.True(t, ok)
			assert.False(t, end.Before(start), "row %d: actual end before start", r)
		} else {
			assert.Nil(t, endVal, "row %d: non-completed project must have nil actual_end_date", r)
		}
	}
	assert.True(t, sawCompleted, "sample should include completed projects")
}

func TestGenerateProjects_RevenueWeightedSelection(t *testing.T) {
	clients, _ := fixtures(t, 100, 10)
	projects, err := newTestDependent(4).GenerateProjects(clients, 3500)
	require.NoError(t, err)

	// Rank clients by revenue.
	type cw struct {
		id  string
		rev float64
	}
	ranked := make([]cw, 0, clients.NumRows())
	for r := 0; r < clients.NumRows(); r++ {
		idVal, _ := clients.Value(r, "client_id")
		revVal, _ := clients.Value(r, "annual_revenue")
		rev, _ := table.AsFloat(revVal)
		ranked = append(ranked, cw{id: idVal.(string), rev: rev})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].rev > ranked[j].rev })

	counts := make(map[string]int)
	refs, err := projects.StringColumn("client_id")
	require.NoError(t, err)
	for _, id := range refs {
		counts[id]++
	}

	decile := len(ranked) / 10
	var top, bottom int
	for _, c := range ranked[:decile] {
		top += counts[c.id]
	}
	for _, c := range ranked[len(ranked)-decile:] {
		bottom += counts[c.id]
	}

	assert.Greater(t, top, bottom,
		"top-decile clients by revenue must receive more projects (top=%d bottom=%d)", top, bottom)
	if bottom > 0 {
		assert.Greater(t, float64(top)/float64(bottom), 1.0)
	}
}

func TestGenerateAssignments_SumApproximatesEstimate(t *testing.T) {
	clients, members := fixtures(t, 10, 30)
	dep := newTestDependent(5)
	projects, err := dep.GenerateProjects(clients, 40)
	require.NoError(t, err)
	assignments, err := dep.GenerateAssignments(projects, members)
	require.NoError(t, err)

	// Sum allocated hours per project.
	sums := make(map[string]float64)
	for r := 0; r < assignments.NumRows(); r++ {
		pidVal, _ := assignments.Value(r, "project_id")
		allocVal, _ := assignments.Value(r, "allocated_hours")
		alloc, _ := table.AsFloat(allocVal)
		sums[pidVal.(string)] += alloc
	}

	for r := 0; r < projects.NumRows(); r++ {
		pidVal, _ := projects.Value(r, "project_id")
		estVal, _ := projects.Value(r, "hours_estimated")
		est, _ := table.AsFloat(estVal)

		sum := sums[pidVal.(string)]
		// Rounding and the 1-hour floor leave a small residual.
		assert.InDelta(t, est, sum, est*0.05+float64(10), "project %s", pidVal)
	}
}

func TestGenerateAssignments_ForeignKeysAndLead(t *testing.T) {
	clients, members := fixtures(t, 10, 25)
	dep := newTestDependent(6)
	projects, err := dep.GenerateProjects(clients, 30)
	require.NoError(t, err)
	assignments, err := dep.GenerateAssignments(projects, members)
	require.NoError(t, err)

	projectIDs := pkSet(t, projects, "project_id")
	memberIDs := pkSet(t, members, "member_id")

	leads := make(map[string]int)
	for r := 0; r < assignments.NumRows(); r++ {
		pidVal, _ := assignments.Value(r, "project_id")
		midVal, _ := assignments.Value(r, "member_id")
		assert.Contains(t, projectIDs, pidVal.(string))
		assert.Contains(t, memberIDs, midVal.(string))

		roleVal, _ := assignments.Value(r, "role_on_project")
		if roleVal.(string) == "Lead" {
			leads[pidVal.(string)]++
		}
	}
	for pid, n := range leads {
		assert.Equal(t, 1, n, "project %s must have exactly one lead", pid)
	}
	assert.Len(t, leads, projects.NumRows(), "every project gets a lead")
}

func TestGenerateTickets_CompletedIffDone(t *testing.T) {
	clients, members := fixtures(t, 8, 20)
	dep := newTestDependent(7)
	projects, err := dep.GenerateProjects(clients, 25)
	require.NoError(t, err)
	assignments, err := dep.GenerateAssignments(projects, members)
	require.NoError(t, err)
	tickets, err := dep.GenerateTickets(projects, members, assignments)
	require.NoError(t, err)

	require.GreaterOrEqual(t, tickets.NumRows(), 3*projects.NumRows(),
		"every project produces at least three tickets")

	for r := 0; r < tickets.NumRows(); r++ {
		statusVal, _ := tickets.Value(r, "status")
		completedVal, _ := tickets.Value(r, "completed_date")

		if statusVal.(string) == "Done" {
			require.NotNil(t, completedVal, "row %d", r)
			createdVal, _ := tickets.Value(r, "created_date")
			created, _ := asTime(createdVal)
			completed, _ := asTime(completedVal)
			assert.True(t, completed.After(created), "row %d: completed must be after created", r)
		} else {
			assert.Nil(t, completedVal, "row %d", r)
		}

		pointsVal, _ := tickets.Value(r, "story_points")
		points, ok := asInt(pointsVal)
		require.True(t, ok)
		assert.Contains(t, schema.StoryPoints, points, "row %d", r)
	}
}

func TestGenerateTickets_AssigneesComeFromProjectTeam(t *testing.T) {
	clients, members := fixtures(t, 5, 20)
	dep := newTestDependent(8)
	projects, err := dep.GenerateProjects(clients, 10)
	require.NoError(t, err)
	assignments, err := dep.GenerateAssignments(projects, members)
	require.NoError(t, err)
	tickets, err := dep.GenerateTickets(projects, members, assignments)
	require.NoError(t, err)

	// project -> assigned member set
	team := make(map[string]map[string]struct{})
	for r := 0; r < assignments.NumRows(); r++ {
		pidVal, _ := assignments.Value(r, "project_id")
		midVal, _ := assignments.Value(r, "member_id")
		pid := pidVal.(string)
		if team[pid] == nil {
			team[pid] = make(map[string]struct{})
		}
		team[pid][midVal.(string)] = struct{}{}
	}

	for r := 0; r < tickets.NumRows(); r++ {
		pidVal, _ := tickets.Value(r, "project_id")
		assigneeVal, _ := tickets.Value(r, "assignee_id")
		assert.Contains(t, team[pidVal.(string)], assigneeVal.(string),
			"row %d: assignee outside project team", r)
	}
}

func TestGenerateInvoices_NetEqualsGrossMinusTax(t *testing.T) {
	clients, _ := fixtures(t, 15, 10)
	dep := newTestDependent(9)
	projects, err := dep.GenerateProjects(clients, 40)
	require.NoError(t, err)
	invoices, err := dep.GenerateInvoices(clients, projects)
	require.NoError(t, err)
	require.Greater(t, invoices.NumRows(), 0)

	for r := 0; r < invoices.NumRows(); r++ {
		grossVal, _ := invoices.Value(r, "amount_gross")
		taxVal, _ := invoices.Value(r, "tax_amount")
		netVal, _ := invoices.Value(r, "amount_net")

		gross, _ := table.AsFloat(grossVal)
		tax, _ := table.AsFloat(taxVal)
		net, _ := table.AsFloat(netVal)

		assert.InDelta(t, gross-tax, net, 0.011, "row %d", r)

		statusVal, _ := invoices.Value(r, "payment_status")
		paymentVal, _ := invoices.Value(r, "payment_date")
		if statusVal.(string) == "Paid" {
			assert.NotNil(t, paymentVal, "row %d: paid invoice needs payment_date", r)
		} else {
			assert.Nil(t, paymentVal, "row %d: unpaid invoice must have nil payment_date", r)
		}
	}
}

func TestGenerateInvoices_ProjectFKValidWhenSet(t *testing.T) {
	clients, _ := fixtures(t, 10, 10)
	dep := newTestDependent(10)
	projects, err := dep.GenerateProjects(clients, 30)
	require.NoError(t, err)
	invoices, err := dep.GenerateInvoices(clients, projects)
	require.NoError(t, err)

	projectIDs := pkSet(t, projects, "project_id")
	var linked int
	for r := 0; r < invoices.NumRows(); r++ {
		pidVal, _ := invoices.Value(r, "project_id")
		if pidVal == nil {
			continue
		}
		linked++
		assert.Contains(t, projectIDs, pidVal.(string), "row %d", r)
	}
	assert.Greater(t, linked, 0, "some invoices should reference projects")
}

func TestGenerateContracts_StatusDerivesFromDates(t *testing.T) {
	clients, _ := fixtures(t, 25, 10)
	contracts, err := newTestDependent(11).GenerateContracts(clients)
	require.NoError(t, err)
	require.Greater(t, contracts.NumRows(), 0)

	now := testNow()
	for r := 0; r < contracts.NumRows(); r++ {
		startVal, _ := contracts.Value(r, "start_date")
		endVal, _ := contracts.Value(r, "end_date")
		statusVal, _ := contracts.Value(r, "status")
		start, _ := asTime(startVal)
		end, _ := asTime(endVal)

		assert.Equal(t, contractStatus(start, end, now), statusVal.(string), "row %d", r)

		typeVal, _ := contracts.Value(r, "contract_type")
		valueVal, _ := contracts.Value(r, "contract_value")
		value, _ := table.AsFloat(valueVal)
		if typeVal.(string) == "NDA" {
			assert.Zero(t, value, "row %d: NDAs carry no value", r)
		}
	}
}

func TestGenerateProjects_EmptyParentFails(t *testing.T) {
	empty := table.New(schema.TableClients, []string{"client_id", "annual_revenue", "monthly_retainer"})
	_, err := newTestDependent(12).GenerateProjects(empty, 10)
	assert.Error(t, err)
}
