package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_NormalizesHeaderAndRows(t *testing.T) {
	table := NewTable(RegistryTable,
		[]string{"\ufeffFiler_EIN", " filer_name "},
		[][]string{
			{"1"},
			{"2", "Beta", "extra"},
		})

	assert.Equal(t, []string{"filer_ein", "filer_name"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"1", ""}, table.Rows[0])
	assert.Equal(t, []string{"2", "Beta"}, table.Rows[1])
}

func TestTable_Require(t *testing.T) {
	table := NewTable(LedgerTable, []string{"filer_ein", "grant_ein"}, nil)

	err := table.Require(LedgerColumns...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, LedgerTable, schemaErr.Table)
	assert.Equal(t, ColGrantAmt, schemaErr.Column)
	assert.Contains(t, err.Error(), `"grant_amt"`)

	assert.NoError(t, table.Require(ColFilerEIN))
}

func TestTable_RequireNil(t *testing.T) {
	var table *Table
	assert.ErrorIs(t, table.Require(ColFilerEIN), ErrSchema)
}

func TestSchema_GetAndExtras(t *testing.T) {
	table := NewTable(RegistryTable,
		[]string{"filer_ein", "filer_name", "city"},
		[][]string{{" 12-3 ", "Alpha", "Seattle"}})

	schema, err := SchemaOf(table, RegistryColumns...)
	require.NoError(t, err)

	row := table.Rows[0]
	assert.Equal(t, "12-3", schema.Get(row, ColFilerEIN))
	assert.Equal(t, "", schema.Get(row, ColGovtAmt))
	assert.True(t, schema.Has("city"))
	assert.Equal(t, map[string]string{"city": "Seattle"}, schema.Extras(row, ColFilerEIN, ColFilerName))
	assert.Nil(t, schema.Extras(row, ColFilerEIN, ColFilerName, "city"))
}
