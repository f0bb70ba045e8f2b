package network

import (
	"fmt"

	"github.com/Veraticus/grantflow/internal/ein"
	"github.com/Veraticus/grantflow/internal/model"
)

// Expand builds the network around q.RootIdentifier breadth-first, out to
// q.MaxDepth hops.
//
// The minimum amount bounds the traversal: a grant below it neither adds a
// node nor an edge. The year set filters edges only, so an organization
// reached through a grant from another year still appears as a node even
// though that grant is not drawn.
//
// A root unknown to both registry and ledger yields an empty graph with
// StatusNotFound. A malformed query yields an *InvalidQueryError.
func Expand(l Lookup, q model.Query) (*model.ResultGraph, error) {
	if err := ValidateQuery(q, l.HasYears()); err != nil {
		return nil, err
	}

	g := model.NewResultGraph(q)
	root := ein.Normalize(q.RootIdentifier)
	if root == "" || !l.Knows(root) {
		g.Status = model.StatusNotFound
		return g, nil
	}

	g.AddNode(node(organization(l, root), 0))

	var (
		traversal = Filter{MinAmount: q.MinAmount}
		years     = Filter{Years: q.YearSet()}
		visited   = map[string]struct{}{root: {}}
		emitted   = make(map[int]struct{})
		frontier  = []string{root}
	)

	for depth := 1; depth <= q.MaxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			hop := ResolveOneHop(l, id, traversal)
			for _, rels := range [][]Relationship{hop.Outgoing, hop.Incoming} {
				for _, rel := range rels {
					cp := rel.Counterparty
					if _, seen := visited[cp.ID]; !seen {
						visited[cp.ID] = struct{}{}
						g.AddNode(node(cp, depth))
						next = append(next, cp.ID)
					}

					if !years.yearAllowed(rel.Grant.Year) {
						continue
					}
					if _, dup := emitted[rel.Grant.Seq]; dup {
						continue
					}
					emitted[rel.Grant.Seq] = struct{}{}
					if err := g.AddEdge(rel.Grant.Edge()); err != nil {
						return nil, fmt.Errorf("expanding %s at depth %d: %w", id, depth, err)
					}
				}
			}
		}
		frontier = next
	}

	return g, nil
}

func node(org model.Organization, depth int) model.Node {
	return model.Node{
		ID:    org.ID,
		Name:  org.Name,
		Known: org.Known,
		Depth: depth,
	}
}
