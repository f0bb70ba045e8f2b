package network

import (
	"github.com/Veraticus/grantflow/internal/ein"
	"github.com/Veraticus/grantflow/internal/model"
)

// Filter is the per-grant predicate of a one-hop query. A nil or empty Years
// set means no year restriction.
type Filter struct {
	Years     map[int]struct{}
	MinAmount float64
}

// Passes reports whether g satisfies the filter.
func (f Filter) Passes(g model.Grant) bool {
	return g.Amount >= f.MinAmount && f.yearAllowed(g.Year)
}

func (f Filter) yearAllowed(year int) bool {
	if len(f.Years) == 0 {
		return true
	}
	_, ok := f.Years[year]
	return ok
}

// Relationship pairs a grant with the organization on its far side.
type Relationship struct {
	Counterparty model.Organization
	Grant        model.Grant
}

// OneHop holds the direct relationships of one organization.
type OneHop struct {
	Outgoing []Relationship // grants given, paired with recipients
	Incoming []Relationship // grants received, paired with filers
}

// ResolveOneHop returns the grants given and received by rootID that pass f,
// in ledger order. rootID must already be normalized. Counterparties missing
// from the registry are returned as "Unknown Organization" placeholders.
func ResolveOneHop(l Lookup, rootID string, f Filter) OneHop {
	var hop OneHop
	for _, g := range l.Outgoing(rootID) {
		if f.Passes(g) {
			hop.Outgoing = append(hop.Outgoing, Relationship{Grant: g, Counterparty: organization(l, g.RecipientID)})
		}
	}
	for _, g := range l.Incoming(rootID) {
		if f.Passes(g) {
			hop.Incoming = append(hop.Incoming, Relationship{Grant: g, Counterparty: organization(l, g.FilerID)})
		}
	}
	return hop
}

func organization(l Lookup, id string) model.Organization {
	if org, ok := l.Resolve(id); ok {
		return org
	}
	return model.UnknownOrganization(id)
}

// Root normalizes raw and resolves it to an organization. ok is false when the
// identifier is unknown to both the registry and the ledger.
func Root(l Lookup, raw string) (model.Organization, bool) {
	id := ein.Normalize(raw)
	if id == "" || !l.Knows(id) {
		return model.Organization{}, false
	}
	return organization(l, id), true
}
