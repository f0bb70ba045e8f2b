package network

import (
	"sort"

	"github.com/Veraticus/grantflow/internal/model"
)

// LimitOrganizations returns a copy of g reduced to at most maxOrgs nodes: the
// root plus the organizations with the largest grant volume. Edges touching a
// dropped node are dropped. Ties keep discovery order. maxOrgs <= 0 or a graph
// already within the limit returns an unchanged copy.
func LimitOrganizations(g *model.ResultGraph, maxOrgs int) *model.ResultGraph {
	out := model.NewResultGraph(g.Query)
	out.Status = g.Status

	if maxOrgs <= 0 || len(g.Nodes) <= maxOrgs {
		for _, n := range g.Nodes {
			out.AddNode(n)
		}
		out.Edges = append(out.Edges, g.Edges...)
		return out
	}

	volume := Summarize(g).Volume
	candidates := make([]model.Node, 0, len(g.Nodes)-1)
	candidates = append(candidates, g.Nodes[1:]...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return volume[candidates[i].ID] > volume[candidates[j].ID]
	})

	keep := map[string]struct{}{g.Nodes[0].ID: {}}
	for _, n := range candidates[:maxOrgs-1] {
		keep[n.ID] = struct{}{}
	}

	for _, n := range g.Nodes {
		if _, ok := keep[n.ID]; ok {
			out.AddNode(n)
		}
	}
	for _, e := range g.Edges {
		_, from := keep[e.From]
		_, to := keep[e.To]
		if from && to {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
