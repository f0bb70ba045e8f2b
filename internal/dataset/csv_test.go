package dataset

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistryCSV = `filer_ein,filer_name,receipt_amt,govt_amt,contrib_amt
12-3456789,Alpha Foundation,1000,200,300

987654321,"Beta, Inc.",50,0,10
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(context.Background(), RegistryTable, strings.NewReader(sampleRegistryCSV))
	require.NoError(t, err)

	assert.Equal(t, RegistryTable, table.Name)
	assert.Equal(t, []string{"filer_ein", "filer_name", "receipt_amt", "govt_amt", "contrib_amt"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Beta, Inc.", table.Rows[1][1])
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(context.Background(), LedgerTable, strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty csv")
}

func TestReadCSV_RaggedRows(t *testing.T) {
	input := "filer_ein,grant_ein,grant_amt\n1,2\n3,4,5,6\n , , \n"
	table, err := ReadCSV(context.Background(), LedgerTable, strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"1", "2", ""}, table.Rows[0])
	assert.Equal(t, []string{"3", "4", "5"}, table.Rows[1])
}

func TestReadCSV_Cancelled(t *testing.T) {
	var b strings.Builder
	b.WriteString("filer_ein,filer_name\n")
	for i := 0; i < 20000; i++ {
		b.WriteString("1,x\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, RegistryTable, strings.NewReader(b.String()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charities.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleRegistryCSV), 0o600))

	table, err := LoadFile(context.Background(), path, RegistryTable, RegistryEntry)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestLoadFile_Zip(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		order   []string
		wantErr error
		wantLen int
	}{
		{
			name:    "hinted entry preferred",
			entries: map[string]string{"other.csv": "filer_ein,filer_name\n1,a\n", RegistryEntry: sampleRegistryCSV},
			order:   []string{"other.csv", RegistryEntry},
			wantLen: 2,
		},
		{
			name:    "first csv entry fallback",
			entries: map[string]string{"readme.txt": "hello", "data.csv": "filer_ein,filer_name\n1,a\n"},
			order:   []string{"readme.txt", "data.csv"},
			wantLen: 1,
		},
		{
			name:    "no csv entry",
			entries: map[string]string{"readme.txt": "hello"},
			order:   []string{"readme.txt"},
			wantErr: ErrNoCSVEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeZip(t, tt.entries, tt.order)
			table, err := LoadFile(context.Background(), path, RegistryTable, RegistryEntry)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, table.Len())
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), RegistryTable, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func writeZip(t *testing.T, entries map[string]string, order []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}
