package index

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/grantflow/internal/dataset"
	"github.com/Veraticus/grantflow/internal/ein"
	"github.com/Veraticus/grantflow/internal/model"
)

// AnomalyKind classifies a row problem found while indexing.
type AnomalyKind string

// Anomaly kinds.
const (
	AnomalyEmptyID        AnomalyKind = "EMPTY_ID"
	AnomalyDuplicateID    AnomalyKind = "DUPLICATE_ID"
	AnomalyBadAmount      AnomalyKind = "BAD_AMOUNT"
	AnomalyNegativeAmount AnomalyKind = "NEGATIVE_AMOUNT"
	AnomalyBadYear        AnomalyKind = "BAD_YEAR"
	AnomalyMissingYear    AnomalyKind = "MISSING_YEAR"
)

// Anomaly is a non-fatal problem with one input row. Row is zero-based.
type Anomaly struct {
	Table  string      `json:"table"`
	Kind   AnomalyKind `json:"kind"`
	Detail string      `json:"detail"`
	Row    int         `json:"row"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s row %d: %s (%s)", a.Table, a.Row, a.Kind, a.Detail)
}

var registryMapped = []string{
	dataset.ColFilerEIN,
	dataset.ColFilerName,
	dataset.ColReceiptAmt,
	dataset.ColGovtAmt,
	dataset.ColContribAmt,
}

var ledgerMapped = []string{
	dataset.ColFilerEIN,
	dataset.ColGrantEIN,
	dataset.ColGrantAmt,
	dataset.ColTaxYear,
}

func (idx *Index) note(table string, row int, kind AnomalyKind, format string, args ...any) {
	idx.anomalies = append(idx.anomalies, Anomaly{
		Table:  table,
		Row:    row,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	})
}

func (idx *Index) addOrganization(s *dataset.Schema, i int, row []string) {
	raw := s.Get(row, dataset.ColFilerEIN)
	id := ein.Normalize(raw)
	if id == "" {
		idx.note(dataset.RegistryTable, i, AnomalyEmptyID, "filer_ein %q has no digits", raw)
		return
	}

	if _, dup := idx.orgs[id]; dup {
		idx.note(dataset.RegistryTable, i, AnomalyDuplicateID, "ein %s repeated, %s row wins", id, idx.duplicates)
		if idx.duplicates == FirstWins {
			return
		}
	}

	org := model.Organization{
		ID:       id,
		Name:     s.Get(row, dataset.ColFilerName),
		Known:    true,
		Metadata: s.Extras(row, registryMapped...),
	}
	org.Receipts = idx.metric(s, i, row, dataset.ColReceiptAmt)
	org.Government = idx.metric(s, i, row, dataset.ColGovtAmt)
	org.Contributions = idx.metric(s, i, row, dataset.ColContribAmt)

	idx.orgs[id] = org
}

// metric parses an optional registry amount; bad values become zero.
func (idx *Index) metric(s *dataset.Schema, i int, row []string, column string) float64 {
	raw := s.Get(row, column)
	v, err := ParseAmount(raw)
	if err != nil {
		idx.note(dataset.RegistryTable, i, AnomalyBadAmount, "%s %q: %v", column, raw, err)
		return 0
	}
	return v
}

func (idx *Index) addGrant(s *dataset.Schema, i int, row []string) {
	rawFiler := s.Get(row, dataset.ColFilerEIN)
	rawRecipient := s.Get(row, dataset.ColGrantEIN)
	filer, recipient := ein.Normalize(rawFiler), ein.Normalize(rawRecipient)
	if filer == "" || recipient == "" {
		idx.note(dataset.LedgerTable, i, AnomalyEmptyID, "filer_ein %q grant_ein %q", rawFiler, rawRecipient)
		return
	}

	rawAmount := s.Get(row, dataset.ColGrantAmt)
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		idx.note(dataset.LedgerTable, i, AnomalyBadAmount, "grant_amt %q: %v", rawAmount, err)
		return
	}
	if amount < 0 {
		idx.note(dataset.LedgerTable, i, AnomalyNegativeAmount, "grant_amt %q", rawAmount)
		return
	}

	var year int
	if idx.hasYears {
		rawYear := s.Get(row, dataset.ColTaxYear)
		if rawYear == "" {
			idx.note(dataset.LedgerTable, i, AnomalyMissingYear, "tax_year empty, kept as 0")
		} else if year, err = ParseYear(rawYear); err != nil {
			idx.note(dataset.LedgerTable, i, AnomalyBadYear, "tax_year %q: %v", rawYear, err)
			return
		}
	}

	g := model.Grant{
		Seq:         i,
		FilerID:     filer,
		RecipientID: recipient,
		Amount:      amount,
		Year:        year,
		Metadata:    s.Extras(row, ledgerMapped...),
	}
	idx.byFiler[filer] = append(idx.byFiler[filer], g)
	idx.byRecipient[recipient] = append(idx.byRecipient[recipient], g)
}

// ParseAmount parses a money cell. Empty cells are zero; "$" and thousands
// separators are accepted.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

// ParseYear parses a tax year, accepting integral floats such as "2021.0".
func ParseYear(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("not an integer year")
	}
	return int(f), nil
}
