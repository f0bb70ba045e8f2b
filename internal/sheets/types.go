package sheets

import (
	"github.com/shopspring/decimal"
)

// Tab titles, in the order they are written.
const (
	TabSummary       = "Summary"
	TabOrganizations = "Organizations"
	TabGrants        = "Grants"
)

var tabOrder = []string{TabSummary, TabOrganizations, TabGrants}

// OrganizationRow is a single row of the Organizations tab.
type OrganizationRow struct {
	EIN    string
	Name   string
	Volume decimal.Decimal // Sum of drawn grants given and received
	Depth  int
	Known  bool
}

// GrantRow is a single row of the Grants tab.
type GrantRow struct {
	FromEIN  string
	FromName string
	ToEIN    string
	ToName   string
	Amount   decimal.Decimal
	Year     int
}

// TabData holds everything written for one export.
type TabData struct {
	Summary       [][]any
	Organizations []OrganizationRow
	Grants        []GrantRow
	TotalAmount   decimal.Decimal
}
