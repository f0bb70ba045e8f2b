package model

import (
	"errors"
	"fmt"
	"slices"
)

// GraphStatus tells a caller whether the query root was found at all.
type GraphStatus string

// Graph status constants.
const (
	StatusFound    GraphStatus = "FOUND"
	StatusNotFound GraphStatus = "NOT_FOUND"
)

// ErrDanglingEdge is returned when an edge references a node missing from the graph.
var ErrDanglingEdge = errors.New("edge endpoint is not a node in the graph")

// Query holds the parameters of a network query exactly as the caller gave
// them, so exporters can embed them unmodified.
type Query struct {
	RootIdentifier string  `json:"root_identifier" yaml:"root_identifier"`
	AllowedYears   []int   `json:"allowed_years" yaml:"allowed_years"`
	MinAmount      float64 `json:"min_amount" yaml:"min_amount"`
	MaxDepth       int     `json:"max_depth" yaml:"max_depth"`
}

// YearSet returns AllowedYears as a set. A nil set means "no restriction".
func (q Query) YearSet() map[int]struct{} {
	if len(q.AllowedYears) == 0 {
		return nil
	}
	set := make(map[int]struct{}, len(q.AllowedYears))
	for _, y := range q.AllowedYears {
		set[y] = struct{}{}
	}
	return set
}

// Node is an organization in a result graph.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Depth int    `json:"depth" yaml:"depth"`
	Known bool   `json:"known" yaml:"known"`
}

// Edge is a grant in a result graph, directed filer to recipient.
type Edge struct {
	From   string  `json:"from" yaml:"from"`
	To     string  `json:"to" yaml:"to"`
	Amount float64 `json:"amount" yaml:"amount"`
	Year   int     `json:"year" yaml:"year"`
	Seq    int     `json:"seq" yaml:"seq"`
}

// ResultGraph is the deduplicated network returned by a query. Nodes keep
// insertion order; every edge endpoint is a node.
type ResultGraph struct {
	nodeIndex map[string]int
	Status    GraphStatus `json:"status" yaml:"status"`
	Nodes     []Node      `json:"nodes" yaml:"nodes"`
	Edges     []Edge      `json:"edges" yaml:"edges"`
	Query     Query       `json:"query" yaml:"query"`
}

// NewResultGraph creates an empty graph for q. The query's year slice is
// copied so later changes by the caller do not leak into the result.
func NewResultGraph(q Query) *ResultGraph {
	q.AllowedYears = slices.Clone(q.AllowedYears)
	return &ResultGraph{
		Query:     q,
		Status:    StatusFound,
		Nodes:     make([]Node, 0),
		Edges:     make([]Edge, 0),
		nodeIndex: make(map[string]int),
	}
}

// AddNode appends n unless a node with the same ID exists. It reports
// whether the node was added.
func (g *ResultGraph) AddNode(n Node) bool {
	if g.nodeIndex == nil {
		g.reindex()
	}
	if _, ok := g.nodeIndex[n.ID]; ok {
		return false
	}
	g.nodeIndex[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	return true
}

// AddEdge appends e. Both endpoints must already be nodes.
func (g *ResultGraph) AddEdge(e Edge) error {
	if !g.HasNode(e.From) {
		return fmt.Errorf("%w: %s", ErrDanglingEdge, e.From)
	}
	if !g.HasNode(e.To) {
		return fmt.Errorf("%w: %s", ErrDanglingEdge, e.To)
	}
	g.Edges = append(g.Edges, e)
	return nil
}

// HasNode reports whether id is a node of g.
func (g *ResultGraph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// Node looks up a node by ID.
func (g *ResultGraph) Node(id string) (Node, bool) {
	if g.nodeIndex == nil {
		g.reindex()
	}
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Root returns the root node, which is always the first node of a found graph.
func (g *ResultGraph) Root() (Node, bool) {
	if len(g.Nodes) == 0 {
		return Node{}, false
	}
	return g.Nodes[0], true
}

// Empty reports whether the graph has neither nodes nor edges.
func (g *ResultGraph) Empty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0
}

// reindex rebuilds the lookup map, e.g. after the graph was decoded from JSON.
func (g *ResultGraph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.ID] = i
	}
}
