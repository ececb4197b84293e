// Package dag provides directed acyclic graph operations for table
// dependencies. Foreign keys induce edges from parent tables to child
// tables; generation must visit parents first.
package dag

import (
	"fmt"
	"sort"

	"github.com/synthline-labs/synthline/internal/schema"
)

// Node represents a table in the dependency graph.
type Node struct {
	// ID is the table name
	ID string
	// Def is the table definition
	Def *schema.Table
}

// Graph represents a directed acyclic graph of table dependencies.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // parent -> children (dependents)
	parents map[string][]string // child -> parents (dependencies)
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a table to the graph.
func (g *Graph) AddNode(id string, def *schema.Table) {
	if _, exists := g.nodes[id]; !exists {
		g.nodes[id] = &Node{ID: id, Def: def}
		g.edges[id] = []string{}
		g.parents[id] = []string{}
	} else {
		g.nodes[id].Def = def
	}
}

// AddEdge adds a directed edge from parent to child (child references parent).
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}

	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// GetNode returns a node by table name.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetParents returns the tables a table references.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the tables referencing a table.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of tables in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of foreign-key edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for id := range g.nodes {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// TopologicalSort returns tables in dependency order (parents before
// children). Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, parentID := range g.parents[id] {
			visit(parentID)
		}
		result = append(result, g.nodes[id])
	}

	// Sort node IDs first for deterministic order
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		visit(id)
	}
	return result, nil
}

// GetRoots returns tables with no foreign keys.
func (g *Graph) GetRoots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// GetLeaves returns tables nothing references.
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// FromSchema builds the dependency graph of a schema registry from its
// foreign keys.
func FromSchema(reg *schema.Registry) (*Graph, error) {
	g := NewGraph()
	for _, name := range reg.Names() {
		def, _ := reg.Table(name)
		g.AddNode(name, def)
	}
	for _, name := range reg.Names() {
		def, _ := reg.Table(name)
		for _, fk := range def.ForeignKeys {
			if err := g.AddEdge(fk.RefTable, name); err != nil {
				return nil, fmt.Errorf("schema foreign key %s.%s: %w", name, fk.Column, err)
			}
		}
	}
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("schema contains a reference cycle: %v", cyclePath)
	}
	return g, nil
}

// GenerationOrder returns table names in the order they must be
// generated, parents before children.
func GenerationOrder(reg *schema.Registry) ([]string, error) {
	g, err := FromSchema(reg)
	if err != nil {
		return nil, err
	}
	nodes, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	order := make([]string, len(nodes))
	for i, n := range nodes {
		order[i] = n.ID
	}
	return order, nil
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
