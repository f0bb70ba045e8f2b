package testutil

import (
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/Veraticus/grantflow/internal/dataset"
	"github.com/Veraticus/grantflow/internal/index"
)

// Dataset builds a registry and a grant ledger for tests.
//
// Example:
//
//	idx := testutil.NewDataset(t).
//		WithOrganization("123456789", "Alpha Foundation").
//		WithGrant("123456789", "987654321", 100, 2020).
//		Index()
type Dataset struct {
	t        *testing.T
	registry *dataset.Table
	ledger   *dataset.Table
}

// NewDataset starts an empty dataset whose ledger carries a tax_year column.
func NewDataset(t *testing.T) *Dataset {
	t.Helper()
	return &Dataset{
		t: t,
		registry: dataset.NewTable(dataset.RegistryTable, []string{
			dataset.ColFilerEIN, dataset.ColFilerName,
			dataset.ColReceiptAmt, dataset.ColGovtAmt, dataset.ColContribAmt,
		}, nil),
		ledger: dataset.NewTable(dataset.LedgerTable, []string{
			dataset.ColFilerEIN, dataset.ColGrantEIN, dataset.ColGrantAmt, dataset.ColTaxYear,
		}, nil),
	}
}

// WithOrganization adds a registry row with zero financials.
func (d *Dataset) WithOrganization(id, name string) *Dataset {
	return d.WithFinancials(id, name, 0, 0, 0)
}

// WithFinancials adds a registry row with receipts, government funding and
// contributions.
func (d *Dataset) WithFinancials(id, name string, receipts, government, contributions float64) *Dataset {
	d.registry.Append([]string{id, name, amount(receipts), amount(government), amount(contributions)})
	return d
}

// WithGrant adds a ledger row. A zero year leaves the cell blank.
func (d *Dataset) WithGrant(filer, recipient string, amt float64, year int) *Dataset {
	y := ""
	if year != 0 {
		y = strconv.Itoa(year)
	}
	d.ledger.Append([]string{filer, recipient, amount(amt), y})
	return d
}

// Tables returns the registry and ledger built so far.
func (d *Dataset) Tables() (registry, ledger *dataset.Table) {
	return d.registry, d.ledger
}

// Index builds an index over the dataset, logging nowhere unless opts say
// otherwise, and fails the test on error.
func (d *Dataset) Index(opts ...index.Option) *index.Index {
	d.t.Helper()
	opts = append([]index.Option{index.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	idx, err := index.Build(d.registry, d.ledger, opts...)
	if err != nil {
		d.t.Fatalf("failed to build index: %v", err)
	}
	return idx
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
