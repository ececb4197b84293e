package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline-labs/synthline/internal/schema"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()
	g.AddNode("clients", nil)
	g.AddNode("projects", nil)

	require.NoError(t, g.AddEdge("clients", "projects"))
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []string{"projects"}, g.GetChildren("clients"))
	assert.Equal(t, []string{"clients"}, g.GetParents("projects"))

	// Duplicate edges are ignored.
	require.NoError(t, g.AddEdge("clients", "projects"))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraph_AddEdgeErrors(t *testing.T) {
	g := NewGraph()
	g.AddNode("clients", nil)

	assert.Error(t, g.AddEdge("clients", "missing"))
	assert.Error(t, g.AddEdge("missing", "clients"))
	assert.Error(t, g.AddEdge("clients", "clients"))
}

func TestGraph_HasCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))

	hasCycle, _ := g.HasCycle()
	assert.False(t, hasCycle)

	require.NoError(t, g.AddEdge("c", "a"))
	hasCycle, path := g.HasCycle()
	assert.True(t, hasCycle)
	assert.NotEmpty(t, path)
}

func TestGraph_TopologicalSort(t *testing.T) {
	g := NewGraph()
	g.AddNode("tickets", nil)
	g.AddNode("projects", nil)
	g.AddNode("clients", nil)
	require.NoError(t, g.AddEdge("clients", "projects"))
	require.NoError(t, g.AddEdge("projects", "tickets"))

	nodes, err := g.TopologicalSort()
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, n := range nodes {
		pos[n.ID] = i
	}
	assert.Less(t, pos["clients"], pos["projects"])
	assert.Less(t, pos["projects"], pos["tickets"])
}

func TestFromSchema_DefaultRegistry(t *testing.T) {
	reg := schema.Default()
	g, err := FromSchema(reg)
	require.NoError(t, err)

	assert.Equal(t, reg.Count(), g.NodeCount())
	assert.ElementsMatch(t, []string{schema.TableClients, schema.TableTeamMembers}, g.GetRoots())

	node, ok := g.GetNode(schema.TableProjects)
	require.True(t, ok)
	assert.Equal(t, schema.TableProjects, node.Def.Name)
	assert.Contains(t, g.GetParents(schema.TableProjects), schema.TableClients)
}

func TestGenerationOrder(t *testing.T) {
	order, err := GenerationOrder(schema.Default())
	require.NoError(t, err)
	require.Len(t, order, schema.Default().Count())

	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}

	// Every child comes after all of its parents.
	assert.Less(t, pos[schema.TableClients], pos[schema.TableProjects])
	assert.Less(t, pos[schema.TableClients], pos[schema.TableInvoices])
	assert.Less(t, pos[schema.TableClients], pos[schema.TableContracts])
	assert.Less(t, pos[schema.TableProjects], pos[schema.TableAssignments])
	assert.Less(t, pos[schema.TableProjects], pos[schema.TableTickets])
	assert.Less(t, pos[schema.TableTeamMembers], pos[schema.TableAssignments])
	assert.Less(t, pos[schema.TableTeamMembers], pos[schema.TableTickets])
}
