package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/grantflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleGraph() (*model.ResultGraph, model.Provenance) {
	q := model.Query{RootIdentifier: "12-3456789", MaxDepth: 1, MinAmount: 50, AllowedYears: []int{2020}}
	g := model.NewResultGraph(q)
	g.AddNode(model.Node{ID: "123456789", Name: `Alpha "A" Fund`, Known: true})
	g.AddNode(model.Node{ID: "987654321", Name: model.UnknownOrganizationName, Depth: 1})
	_ = g.AddEdge(model.Edge{From: "123456789", To: "987654321", Amount: 100, Year: 2020})
	_ = g.AddEdge(model.Edge{From: "987654321", To: "123456789", Amount: 75.5, Seq: 1})

	return g, model.Provenance{
		ID:          "abc",
		Query:       q,
		Generator:   "grantflow dev",
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestJSON(t *testing.T) {
	g, prov := sampleGraph()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "JSON", g, prov))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "12-3456789", doc.Provenance.Query.RootIdentifier, "query is kept verbatim")
	assert.Equal(t, []int{2020}, doc.Provenance.Query.AllowedYears)
	assert.True(t, prov.GeneratedAt.Equal(doc.Provenance.GeneratedAt))
	assert.Equal(t, model.StatusFound, doc.Status)
	assert.Equal(t, g.Nodes, doc.Nodes)
	assert.Equal(t, g.Edges, doc.Edges)
	assert.Equal(t, 2, doc.Stats.Grants)
	assert.InDelta(t, 175.5, doc.Stats.TotalAmount, 1e-9)
}

func TestYAML(t *testing.T) {
	g, prov := sampleGraph()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "yml", g, prov))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "FOUND", doc["status"])
	prov2, ok := doc["provenance"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc", prov2["id"])
	assert.Len(t, doc["nodes"], 2)
}

func TestDOT(t *testing.T) {
	g, prov := sampleGraph()
	var buf bytes.Buffer
	require.NoError(t, DOT(&buf, g, prov))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "// generated by grantflow dev at 2024-01-02T03:04:05Z\n"))
	assert.Contains(t, out, "// query: root=12-3456789 depth=1 min_amount=50 years=2020 status=FOUND")
	assert.Contains(t, out, "digraph GrantNetwork {")
	assert.Contains(t, out, `"123456789" [label="Alpha \"A\" Fund\n12-3456789" peripheries=2];`)
	assert.Contains(t, out, `"987654321" [label="Unknown Organization\n98-7654321" style=dashed];`)
	assert.Contains(t, out, `"123456789" -> "987654321" [label="$100.00 (2020)"];`)
	assert.Contains(t, out, `"987654321" -> "123456789" [label="$75.50"];`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestDOT_NotFound(t *testing.T) {
	g := model.NewResultGraph(model.Query{RootIdentifier: "x"})
	g.Status = model.StatusNotFound

	var buf bytes.Buffer
	require.NoError(t, DOT(&buf, g, model.NewProvenance(g.Query, "test")))
	assert.Contains(t, buf.String(), "status=NOT_FOUND")
	assert.NotContains(t, buf.String(), "->")
}

func TestCSV(t *testing.T) {
	g, prov := sampleGraph()
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, g, prov))

	assert.True(t, strings.HasPrefix(buf.String(), "# generated_at=2024-01-02T03:04:05Z generator=grantflow dev id=abc\n"))

	r := csv.NewReader(&buf)
	r.Comment = '#'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{"123456789", `Alpha "A" Fund`, "987654321", "Unknown Organization", "100", "2020"}, records[1])
	assert.Equal(t, []string{"987654321", "Unknown Organization", "123456789", `Alpha "A" Fund`, "75.5", ""}, records[2])
}

func TestWrite_UnknownFormat(t *testing.T) {
	g, prov := sampleGraph()
	err := Write(&bytes.Buffer{}, "xml", g, prov)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "json, yaml, dot, csv")
}
