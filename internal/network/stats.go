package network

import (
	"math"

	"github.com/Veraticus/grantflow/internal/model"
)

// GraphStats describes the grants drawn in a result graph.
type GraphStats struct {
	Volume             map[string]float64 `json:"volume" yaml:"volume"` // Sum of incident edge amounts per node
	Organizations      int                `json:"organizations" yaml:"organizations"`
	KnownOrganizations int                `json:"known_organizations" yaml:"known_organizations"`
	Grants             int                `json:"grants" yaml:"grants"`
	TotalAmount        float64            `json:"total_amount" yaml:"total_amount"`
	AverageAmount      float64            `json:"average_amount" yaml:"average_amount"`
	StandardDeviation  float64            `json:"standard_deviation" yaml:"standard_deviation"` // Population standard deviation
}

// Summarize computes GraphStats for g.
func Summarize(g *model.ResultGraph) GraphStats {
	stats := GraphStats{
		Volume:        make(map[string]float64, len(g.Nodes)),
		Organizations: len(g.Nodes),
		Grants:        len(g.Edges),
	}
	for _, n := range g.Nodes {
		stats.Volume[n.ID] = 0
		if n.Known {
			stats.KnownOrganizations++
		}
	}
	if len(g.Edges) == 0 {
		return stats
	}

	for _, e := range g.Edges {
		stats.TotalAmount += e.Amount
		stats.Volume[e.From] += e.Amount
		if e.To != e.From {
			stats.Volume[e.To] += e.Amount
		}
	}
	stats.AverageAmount = stats.TotalAmount / float64(len(g.Edges))

	var sq float64
	for _, e := range g.Edges {
		d := e.Amount - stats.AverageAmount
		sq += d * d
	}
	stats.StandardDeviation = math.Sqrt(sq / float64(len(g.Edges)))

	return stats
}

// TaxpayerImpact sums the government funding reported by the registry for
// every known organization in g.
func TaxpayerImpact(l Lookup, g *model.ResultGraph) float64 {
	var total float64
	for _, n := range g.Nodes {
		if org, ok := l.Resolve(n.ID); ok {
			total += org.Government
		}
	}
	return total
}
