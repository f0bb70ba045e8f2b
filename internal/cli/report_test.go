package cli

import (
	"testing"

	"github.com/Veraticus/grantflow/internal/model"
	"github.com/Veraticus/grantflow/internal/network"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		want string
		in   float64
	}{
		{in: 0, want: "$0.00"},
		{in: 12.5, want: "$12.50"},
		{in: 1234567.891, want: "$1,234,567.89"},
		{in: -1500, want: "-$1,500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.in))
		})
	}
}

func TestRenderConnections(t *testing.T) {
	root := model.Organization{ID: "123456789", Name: "Alpha Foundation", Known: true}
	hop := network.OneHop{
		Outgoing: []network.Relationship{{
			Counterparty: model.UnknownOrganization("987654321"),
			Grant:        model.Grant{FilerID: "123456789", RecipientID: "987654321", Amount: 2500, Year: 2020},
		}},
	}

	out := RenderConnections(root, hop)
	assert.Contains(t, out, "Alpha Foundation (12-3456789)")
	assert.Contains(t, out, "Grants given: 1 totaling $2,500.00")
	assert.Contains(t, out, "Unknown Organization")
	assert.Contains(t, out, "98-7654321")
	assert.Contains(t, out, "2020")
	assert.Contains(t, out, "Grants received: 0 totaling $0.00")
	assert.Contains(t, out, "none")
}

func TestRenderNetwork(t *testing.T) {
	g := model.NewResultGraph(model.Query{RootIdentifier: "12-3456789", MaxDepth: 1, AllowedYears: []int{2020}})
	g.AddNode(model.Node{ID: "123456789", Name: "Alpha", Known: true})
	g.AddNode(model.Node{ID: "987654321", Name: model.UnknownOrganizationName, Depth: 1})
	_ = g.AddEdge(model.Edge{From: "123456789", To: "987654321", Amount: 100, Year: 2020})

	out := RenderNetwork(g, network.Summarize(g), 42)
	assert.Contains(t, out, "Organizations:   2 (1 registered)")
	assert.Contains(t, out, "Years:           2020")
	assert.Contains(t, out, "Taxpayer impact: $42.00")
	assert.Contains(t, out, "Funder")
	assert.Contains(t, out, "$100.00")
}

func TestRenderNetwork_NoEdges(t *testing.T) {
	g := model.NewResultGraph(model.Query{RootIdentifier: "1"})
	g.AddNode(model.Node{ID: "1", Name: "Solo", Known: true})

	out := RenderNetwork(g, network.Summarize(g), 0)
	assert.Contains(t, out, "No grants match the query.")
	assert.Contains(t, out, "Years:           all")
}

func TestRenderNetwork_NotFound(t *testing.T) {
	g := model.NewResultGraph(model.Query{RootIdentifier: "55-5555555"})
	g.Status = model.StatusNotFound

	out := RenderNetwork(g, network.Summarize(g), 0)
	assert.Contains(t, out, `"55-5555555" was not found`)
}

func TestRenderProfile(t *testing.T) {
	tests := []struct {
		name     string
		contains []string
		absent   []string
		profile  network.Profile
	}{
		{
			name: "registered",
			profile: network.Profile{
				ID: "123456789", Name: "Alpha", InRegistry: true,
				GrantsGiven: 2, AmountGiven: 150, Government: 1000, Years: []int{2022, 2020},
			},
			contains: []string{"Alpha", "12-3456789", "registered", "Grants given:    2 totaling $150.00", "Government:      $1,000.00", "2022, 2020"},
		},
		{
			name:     "ledger only",
			profile:  network.Profile{ID: "987654321", Name: model.UnknownOrganizationName, GrantsReceived: 1, AmountReceived: 5},
			contains: []string{"ledger only", "Grants received: 1 totaling $5.00", "none recorded"},
			absent:   []string{"Government:"},
		},
		{
			name:     "missing",
			profile:  network.Profile{ID: "555555555", Name: model.UnknownOrganizationName},
			contains: []string{"Organization 55-5555555 was not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderProfile(tt.profile)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}
