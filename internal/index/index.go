// Package index builds the in-memory lookup structures that every network
// query runs against. An Index is immutable once built and safe for
// concurrent use.
package index

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Veraticus/grantflow/internal/dataset"
	"github.com/Veraticus/grantflow/internal/model"
)

// DuplicatePolicy decides which registry row wins when an EIN repeats.
type DuplicatePolicy int

const (
	// FirstWins keeps the first row seen for an EIN.
	FirstWins DuplicatePolicy = iota
	// LastWins keeps the last row seen for an EIN.
	LastWins
)

func (p DuplicatePolicy) String() string {
	if p == LastWins {
		return "last"
	}
	return "first"
}

// ParseDuplicatePolicy parses "first" or "last".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return FirstWins, nil
	case "last":
		return LastWins, nil
	default:
		return FirstWins, fmt.Errorf("invalid duplicate policy %q (want first or last)", s)
	}
}

// Option configures Build.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	duplicates DuplicatePolicy
}

// WithDuplicatePolicy sets how repeated registry EINs are resolved.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) { o.duplicates = p }
}

// WithLogger sets the logger used to report anomalies.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Stats summarizes what Build consumed.
type Stats struct {
	RegistryRows  int `json:"registry_rows"`
	Organizations int `json:"organizations"`
	LedgerRows    int `json:"ledger_rows"`
	Grants        int `json:"grants"`
	Anomalies     int `json:"anomalies"`
}

// Index holds organizations by EIN and grants bucketed by both endpoints.
type Index struct {
	orgs        map[string]model.Organization
	byFiler     map[string][]model.Grant
	byRecipient map[string][]model.Grant
	anomalies   []Anomaly
	stats       Stats
	duplicates  DuplicatePolicy
	hasYears    bool
}

// Build indexes a registry and a ledger in a single pass over each. A missing
// required column fails the whole build with a *dataset.SchemaError; bad rows
// are recorded as anomalies and skipped.
func Build(registry, ledger *dataset.Table, opts ...Option) (*Index, error) {
	o := options{logger: slog.Default(), duplicates: FirstWins}
	for _, opt := range opts {
		opt(&o)
	}

	regSchema, err := dataset.SchemaOf(registry, dataset.RegistryColumns...)
	if err != nil {
		return nil, err
	}
	ledgerSchema, err := dataset.SchemaOf(ledger, dataset.LedgerColumns...)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		orgs:        make(map[string]model.Organization, registry.Len()),
		byFiler:     make(map[string][]model.Grant),
		byRecipient: make(map[string][]model.Grant),
		duplicates:  o.duplicates,
		hasYears:    ledgerSchema.Has(dataset.ColTaxYear),
	}

	for i, row := range registry.Rows {
		idx.addOrganization(regSchema, i, row)
	}
	for i, row := range ledger.Rows {
		idx.addGrant(ledgerSchema, i, row)
	}

	idx.stats = Stats{
		RegistryRows:  registry.Len(),
		Organizations: len(idx.orgs),
		LedgerRows:    ledger.Len(),
		Anomalies:     len(idx.anomalies),
	}
	for _, grants := range idx.byFiler {
		idx.stats.Grants += len(grants)
	}

	for _, a := range idx.anomalies {
		o.logger.Debug("Skipped or adjusted row",
			"table", a.Table,
			"row", a.Row,
			"kind", a.Kind,
			"detail", a.Detail)
	}
	o.logger.Info("Dataset index built",
		"organizations", idx.stats.Organizations,
		"grants", idx.stats.Grants,
		"anomalies", idx.stats.Anomalies,
		"duplicates", o.duplicates.String(),
		"has_years", idx.hasYears)

	return idx, nil
}

// Resolve returns the registry record for id.
func (idx *Index) Resolve(id string) (model.Organization, bool) {
	org, ok := idx.orgs[id]
	return org, ok
}

// Outgoing returns the grants filed by id in ledger order. Callers must not
// modify the returned grants.
func (idx *Index) Outgoing(id string) []model.Grant {
	return slices.Clip(idx.byFiler[id])
}

// Incoming returns the grants received by id in ledger order. Callers must
// not modify the returned grants.
func (idx *Index) Incoming(id string) []model.Grant {
	return slices.Clip(idx.byRecipient[id])
}

// Knows reports whether id appears in the registry or on either side of a grant.
func (idx *Index) Knows(id string) bool {
	if _, ok := idx.orgs[id]; ok {
		return true
	}
	return len(idx.byFiler[id]) > 0 || len(idx.byRecipient[id]) > 0
}

// HasYears reports whether the ledger carried a tax_year column.
func (idx *Index) HasYears() bool {
	return idx.hasYears
}

// Anomalies returns a copy of the row anomalies recorded during Build.
func (idx *Index) Anomalies() []Anomaly {
	return slices.Clone(idx.anomalies)
}

// Stats returns build statistics.
func (idx *Index) Stats() Stats {
	return idx.stats
}

// DuplicatePolicy returns the policy the index was built with.
func (idx *Index) DuplicatePolicy() DuplicatePolicy {
	return idx.duplicates
}
