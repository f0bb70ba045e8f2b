package network

import (
	"testing"

	"github.com/Veraticus/grantflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOneHop(t *testing.T) {
	idx := buildIndex(t,
		map[string]string{"100000001": "Alpha", "100000002": "Beta"},
		[]testGrant{
			{filer: "100000001", recipient: "100000002", amount: 500, year: 2020},
			{filer: "100000001", recipient: "999999999", amount: 50, year: 2021},
			{filer: "100000002", recipient: "100000001", amount: 75, year: 2021},
			{filer: "100000001", recipient: "100000002", amount: 1000, year: 2022},
		})

	tests := []struct {
		name         string
		filter       Filter
		wantOutgoing []int
		wantIncoming []int
	}{
		{
			name:         "no filter keeps ledger order",
			filter:       Filter{},
			wantOutgoing: []int{0, 1, 3},
			wantIncoming: []int{2},
		},
		{
			name:         "minimum amount",
			filter:       Filter{MinAmount: 100},
			wantOutgoing: []int{0, 3},
		},
		{
			name:         "minimum amount is inclusive",
			filter:       Filter{MinAmount: 75},
			wantOutgoing: []int{0, 3},
			wantIncoming: []int{2},
		},
		{
			name:         "year set",
			filter:       Filter{Years: map[int]struct{}{2021: {}}},
			wantOutgoing: []int{1},
			wantIncoming: []int{2},
		},
		{
			name:         "amount and year combined",
			filter:       Filter{MinAmount: 60, Years: map[int]struct{}{2021: {}, 2022: {}}},
			wantOutgoing: []int{3},
			wantIncoming: []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hop := ResolveOneHop(idx, "100000001", tt.filter)
			assert.Equal(t, tt.wantOutgoing, seqs(hop.Outgoing))
			assert.Equal(t, tt.wantIncoming, seqs(hop.Incoming))

			for _, rel := range append(hop.Outgoing, hop.Incoming...) {
				assert.GreaterOrEqual(t, rel.Grant.Amount, tt.filter.MinAmount)
				if len(tt.filter.Years) > 0 {
					assert.Contains(t, tt.filter.Years, rel.Grant.Year)
				}
			}
		})
	}
}

func TestResolveOneHop_Counterparties(t *testing.T) {
	idx := buildIndex(t,
		map[string]string{"100000001": "Alpha", "100000002": "Beta"},
		[]testGrant{
			{filer: "100000001", recipient: "100000002", amount: 1, year: 2020},
			{filer: "100000001", recipient: "999999999", amount: 1, year: 2020},
			{filer: "888888888", recipient: "100000001", amount: 1, year: 2020},
		})

	hop := ResolveOneHop(idx, "100000001", Filter{})
	require.Len(t, hop.Outgoing, 2)
	require.Len(t, hop.Incoming, 1)

	assert.Equal(t, "Beta", hop.Outgoing[0].Counterparty.Name)
	assert.True(t, hop.Outgoing[0].Counterparty.Known)

	assert.Equal(t, model.UnknownOrganization("999999999"), hop.Outgoing[1].Counterparty)
	assert.Equal(t, model.UnknownOrganization("888888888"), hop.Incoming[0].Counterparty)
}

func TestResolveOneHop_LedgerOnlyRoot(t *testing.T) {
	idx := buildIndex(t, nil, []testGrant{
		{filer: "555555555", recipient: "666666666", amount: 10, year: 2020},
	})

	hop := ResolveOneHop(idx, "555555555", Filter{})
	require.Len(t, hop.Outgoing, 1)
	assert.Empty(t, hop.Incoming)
}

func TestResolveOneHop_DoesNotNormalize(t *testing.T) {
	idx := buildIndex(t, map[string]string{"123456789": "Alpha"}, []testGrant{
		{filer: "123456789", recipient: "987654321", amount: 10, year: 2020},
	})

	hop := ResolveOneHop(idx, "12-3456789", Filter{})
	assert.Empty(t, hop.Outgoing)
}

func seqs(rels []Relationship) []int {
	if len(rels) == 0 {
		return nil
	}
	out := make([]int, len(rels))
	for i, r := range rels {
		out[i] = r.Grant.Seq
	}
	return out
}

func TestRoot(t *testing.T) {
	l := scenarioIndex(t)

	org, ok := Root(l, "12-3456789")
	require.True(t, ok)
	assert.Equal(t, "Alpha Foundation", org.Name)

	org, ok = Root(l, "98-7654321")
	require.True(t, ok, "ledger-only recipients are known")
	assert.Equal(t, model.UnknownOrganizationName, org.Name)

	_, ok = Root(l, "55-5555555")
	assert.False(t, ok)

	_, ok = Root(l, "  ")
	assert.False(t, ok)
}
