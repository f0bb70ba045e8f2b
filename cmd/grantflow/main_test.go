package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/grantflow/internal/common"
	"github.com/Veraticus/grantflow/internal/dataset"
	"github.com/Veraticus/grantflow/internal/export"
	"github.com/Veraticus/grantflow/internal/index"
	"github.com/Veraticus/grantflow/internal/model"
	"github.com/Veraticus/grantflow/internal/sheets"
	"github.com/Veraticus/grantflow/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	registryCSV = `filer_ein,filer_name,receipt_amt,govt_amt,contrib_amt
123456789,Alpha Foundation,5000,250,1000
111111111,Beta Trust,100,0,0
`
	ledgerCSV = `filer_ein,grant_ein,grant_amt,tax_year
12-3456789,111111111,500,2021
222222222,123456789,300,2020
111111111,333333333,50,2021
`
)

type fixture struct {
	dir      string
	registry string
	ledger   string
	database string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))

	f := fixture{
		dir:      dir,
		registry: filepath.Join(dir, "registry.csv"),
		ledger:   filepath.Join(dir, "ledger.csv"),
		database: filepath.Join(dir, "db", "grantflow.db"),
	}
	require.NoError(t, os.WriteFile(f.registry, []byte(registryCSV), 0600))
	require.NoError(t, os.WriteFile(f.ledger, []byte(ledgerCSV), 0600))
	return f
}

// run executes the CLI in-process and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	cfgFile = ""

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportThenQuery(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "import", "--database", f.database, "--registry", f.registry, "--ledger", f.ledger)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported registry: 2 rows")
	assert.Contains(t, out, "Imported ledger: 3 rows")
	assert.Contains(t, out, "Import complete")

	out, err = run(t, "import", "--list", "--database", f.database)
	require.NoError(t, err)
	assert.Contains(t, out, "registry")
	assert.Contains(t, out, f.ledger)

	out, err = run(t, "connections", "12-3456789", "--database", f.database)
	require.NoError(t, err)
	assert.Contains(t, out, "Beta Trust")
	assert.Contains(t, out, "Grants given: 1")
	assert.Contains(t, out, "Grants received: 1")

	out, err = run(t, "network", "123456789", "--database", f.database, "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Status string `json:"status"`
		Nodes  []struct {
			ID    string `json:"id"`
			Depth int    `json:"depth"`
		} `json:"nodes"`
		Edges      []json.RawMessage `json:"edges"`
		Provenance struct {
			Generator string      `json:"generator"`
			Query     model.Query `json:"query"`
		} `json:"provenance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "FOUND", doc.Status)
	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Edges, 2)
	assert.Equal(t, "grantflow dev", doc.Provenance.Generator)
	assert.Equal(t, "123456789", doc.Provenance.Query.RootIdentifier)
	assert.Equal(t, 1, doc.Provenance.Query.MaxDepth)

	out, err = run(t, "org", "123456789", "--database", f.database, "--json")
	require.NoError(t, err)
	var profile map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, true, profile["in_registry"])
	assert.EqualValues(t, 1, profile["grants_given"])
	assert.EqualValues(t, 1, profile["grants_received"])
}

func TestImport_Drop(t *testing.T) {
	f := newFixture(t)

	_, err := run(t, "import", "--database", f.database, "--registry", f.registry, "--ledger", f.ledger)
	require.NoError(t, err)

	out, err := run(t, "import", "--drop", "--database", f.database)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed registry")
	assert.Contains(t, out, "Removed ledger")

	out, err = run(t, "import", "--drop", "--database", f.database)
	require.NoError(t, err)
	assert.Contains(t, out, "No registry imported")

	_, err = run(t, "network", "123456789", "--database", f.database)
	require.ErrorIs(t, err, common.ErrNoDataset)
}

func TestImport_ShowsAnomalies(t *testing.T) {
	f := newFixture(t)
	messy := filepath.Join(f.dir, "messy-ledger.csv")
	require.NoError(t, os.WriteFile(messy, []byte(ledgerCSV+"444444444,555555555,lots,2021\n"), 0600))

	out, err := run(t, "import", "--database", f.database, "--registry", f.registry, "--ledger", messy)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped rows:  1")
	assert.Contains(t, out, string(index.AnomalyBadAmount))
}

func TestNetwork_FromFiles(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.dir, "alpha.yaml")

	_, err := run(t, "network", "12-3456789",
		"--registry", f.registry, "--ledger", f.ledger,
		"--depth", "2", "--min-amount", "100", "--format", "yaml", "--output", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "root_identifier: 12-3456789")
	assert.Contains(t, text, "min_amount: 100")
	assert.NotContains(t, text, "333333333", "the 50 grant is below the minimum")
}

func TestNetwork_YearFilterKeepsNodes(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "network", "123456789",
		"--registry", f.registry, "--ledger", f.ledger,
		"--year", "2021", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	var rows []string
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 2, "header plus the single 2021 grant")
	assert.Equal(t, strings.Join(export.CSVHeader, ","), rows[0])
	assert.Contains(t, rows[1], "111111111")
}

func TestNetwork_MultipleRootsWriteOneFileEach(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.dir, "out", "net.dot")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0750))

	_, err := run(t, "network", "123456789", "11-1111111",
		"--registry", f.registry, "--ledger", f.ledger,
		"--format", "dot", "--output", target)
	require.NoError(t, err)

	for _, name := range []string{"net-123456789.dot", "net-111111111.dot"} {
		data, err := os.ReadFile(filepath.Join(f.dir, "out", name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "digraph GrantNetwork")
	}
}

func TestNetwork_TableNotFound(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "network", "99-9999999", "--registry", f.registry, "--ledger", f.ledger)
	require.NoError(t, err)
	assert.Contains(t, out, "was not found")
}

func TestNetwork_Errors(t *testing.T) {
	f := newFixture(t)
	files := []string{"--registry", f.registry, "--ledger", f.ledger}

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{name: "unknown format", args: []string{"network", "123456789", "--format", "png"}, target: export.ErrUnknownFormat},
		{name: "sheets with many roots", args: []string{"network", "1", "2", "--export-sheets"}, target: common.ErrInvalidConfig},
		{name: "negative depth", args: []string{"network", "1", "--depth", "-1"}, target: common.ErrInvalidConfig},
		{name: "unknown theme", args: []string{"explore", "--theme", "neon"}, target: common.ErrInvalidConfig},
		{name: "registry without ledger", args: []string{"org", "1", "--registry", f.registry}, target: common.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.name != "registry without ledger" {
				args = append(args, files...)
			}
			_, err := run(t, args...)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestQuery_NoDataset(t *testing.T) {
	f := newFixture(t)

	_, err := run(t, "connections", "123456789", "--database", f.database)
	require.ErrorIs(t, err, common.ErrNoDataset)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "grantflow import")
}

func TestImport_RequiresBothFiles(t *testing.T) {
	f := newFixture(t)

	_, err := run(t, "import", "--database", f.database)
	require.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestImport_MissingColumn(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(f.dir, "bad-ledger.csv")
	require.NoError(t, os.WriteFile(bad, []byte("filer_ein,grant_ein\n1,2\n"), 0600))

	_, err := run(t, "import", "--database", f.database, "--registry", f.registry, "--ledger", bad)

	var schemaErr *dataset.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, dataset.ColGrantAmt, schemaErr.Column)
}

func TestMigrateStatus(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "migrate", "--status", "--database", f.database)
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")

	_, err = run(t, "migrate", "--database", f.database)
	require.NoError(t, err)

	out, err = run(t, "migrate", "--status", "--database", f.database)
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2")
	assert.NotContains(t, out, "Migrations pending")
}

func TestVersion(t *testing.T) {
	newFixture(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "grantflow dev\n", out)
}

func TestInvalidLogFormat(t *testing.T) {
	newFixture(t)

	_, err := run(t, "version", "--log-format", "xml")
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestAuthSheets(t *testing.T) {
	f := newFixture(t)
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")

	_, err := run(t, "auth", "sheets")
	require.ErrorIs(t, err, common.ErrMissingConfig)

	tokenFile := filepath.Join(f.dir, ".config", "grantflow", "sheets-token.json")
	require.NoError(t, sheets.SaveToken(tokenFile, &oauth2.Token{RefreshToken: "saved", TokenType: "Bearer"}))

	out, err := run(t, "auth", "sheets", "--client-id", "id", "--client-secret", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Already authenticated")
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		root     string
		multiple bool
		want     string
	}{
		{name: "stdout", output: "", root: "1", multiple: true, want: ""},
		{name: "single root", output: "net.json", root: "12-3456789", multiple: false, want: "net.json"},
		{name: "many roots", output: "out/net.json", root: "12-3456789", multiple: true, want: "out/net-123456789.json"},
		{name: "no extension", output: "net", root: "1", multiple: true, want: "net-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputPath(tt.output, tt.root, tt.multiple))
		})
	}
}

func TestPublish(t *testing.T) {
	graph := model.NewResultGraph(model.Query{RootIdentifier: "123456789", MaxDepth: 1})
	prov := model.NewProvenance(graph.Query, "grantflow test")

	t.Run("success", func(t *testing.T) {
		w := &sheets.MockWriter{}
		w.On("Write", mock.Anything, graph, prov).Return(nil)

		require.NoError(t, publish(context.Background(), w, graph, prov))
		w.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		w := &sheets.MockWriter{}
		quota := errors.New("quota exceeded")
		w.On("Write", mock.Anything, graph, prov).Return(quota)

		err := publish(context.Background(), w, graph, prov)
		require.ErrorIs(t, err, quota)
		assert.Contains(t, err.Error(), "failed to export to Google Sheets")
	})
}

func TestLoadFromStore(t *testing.T) {
	store := testutil.SetupTestStore(t, testutil.NewDataset(t).
		WithOrganization("123456789", "Alpha Foundation").
		WithGrant("123456789", "987654321", 100, 2020))

	registry, ledger, err := loadFromStore(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, 1, ledger.Len())

	_, _, err = loadFromStore(context.Background(), testutil.SetupTestStore(t, nil))
	require.ErrorIs(t, err, common.ErrNoDataset)
	require.ErrorIs(t, err, common.ErrNotFound)
}
