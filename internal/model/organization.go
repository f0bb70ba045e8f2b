// Package model defines the core domain models used throughout the application.
package model

// UnknownOrganizationName is the display name given to a counterparty that
// appears in the grants ledger but not in the charity registry.
const UnknownOrganizationName = "Unknown Organization"

// Organization is a charity registry record keyed by its normalized EIN.
type Organization struct {
	Metadata      map[string]string // Raw registry columns not mapped to a field
	ID            string
	Name          string
	Receipts      float64 // receipt_amt
	Government    float64 // govt_amt
	Contributions float64 // contrib_amt
	Known         bool    // false for ledger-only placeholders
}

// UnknownOrganization returns the placeholder used for an identifier that has
// no registry row.
func UnknownOrganization(id string) Organization {
	return Organization{
		ID:   id,
		Name: UnknownOrganizationName,
	}
}
