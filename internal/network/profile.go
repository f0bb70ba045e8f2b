package network

import (
	"slices"

	"github.com/Veraticus/grantflow/internal/ein"
)

// Profile is the standing of a single organization in the dataset.
type Profile struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Years          []int   `json:"years"` // Tax years with activity, newest first
	GrantsGiven    int     `json:"grants_given"`
	GrantsReceived int     `json:"grants_received"`
	AmountGiven    float64 `json:"amount_given"`
	AmountReceived float64 `json:"amount_received"`
	Receipts       float64 `json:"receipts"`
	Government     float64 `json:"government"`
	Contributions  float64 `json:"contributions"`
	InRegistry     bool    `json:"in_registry"`
}

// Found reports whether the organization exists in the registry or the ledger.
func (p Profile) Found() bool {
	return p.InRegistry || p.GrantsGiven > 0 || p.GrantsReceived > 0
}

// ProfileOf looks up the raw identifier and summarizes its registry record
// and grant activity without any filtering.
func ProfileOf(l Lookup, raw string) Profile {
	id := ein.Normalize(raw)
	org := organization(l, id)
	p := Profile{
		ID:            id,
		Name:          org.Name,
		InRegistry:    org.Known,
		Receipts:      org.Receipts,
		Government:    org.Government,
		Contributions: org.Contributions,
	}
	if id == "" {
		return p
	}

	for _, g := range l.Outgoing(id) {
		p.GrantsGiven++
		p.AmountGiven += g.Amount
	}
	for _, g := range l.Incoming(id) {
		p.GrantsReceived++
		p.AmountReceived += g.Amount
	}
	p.Years = AvailableYears(l, id)
	return p
}

// AvailableYears returns the distinct tax years of grants given or received by
// id, newest first. It is empty when the ledger has no year column.
func AvailableYears(l Lookup, id string) []int {
	if !l.HasYears() {
		return nil
	}
	seen := make(map[int]struct{})
	var years []int
	for _, bucket := range [][]int{yearsOf(l, id, true), yearsOf(l, id, false)} {
		for _, y := range bucket {
			if _, ok := seen[y]; ok || y == 0 {
				continue
			}
			seen[y] = struct{}{}
			years = append(years, y)
		}
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}

func yearsOf(l Lookup, id string, outgoing bool) []int {
	grants := l.Incoming(id)
	if outgoing {
		grants = l.Outgoing(id)
	}
	years := make([]int, len(grants))
	for i, g := range grants {
		years[i] = g.Year
	}
	return years
}
