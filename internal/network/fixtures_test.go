package network

import (
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/Veraticus/grantflow/internal/dataset"
	"github.com/Veraticus/grantflow/internal/index"
	"github.com/stretchr/testify/require"
)

type testGrant struct {
	filer     string
	recipient string
	amount    float64
	year      int
}

func buildIndex(t *testing.T, orgs map[string]string, grants []testGrant) *index.Index {
	t.Helper()

	reg := dataset.NewTable(dataset.RegistryTable,
		[]string{"filer_ein", "filer_name", "receipt_amt", "govt_amt", "contrib_amt"}, nil)
	for _, id := range sortedKeys(orgs) {
		reg.Append([]string{id, orgs[id], "0", "10", "0"})
	}

	led := dataset.NewTable(dataset.LedgerTable,
		[]string{"filer_ein", "grant_ein", "grant_amt", "tax_year"}, nil)
	for _, g := range grants {
		led.Append([]string{
			g.filer,
			g.recipient,
			strconv.FormatFloat(g.amount, 'f', -1, 64),
			strconv.Itoa(g.year),
		})
	}

	idx, err := index.Build(reg, led, index.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return idx
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
