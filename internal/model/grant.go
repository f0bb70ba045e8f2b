package model

// Grant is a single directed payment from a filer to a recipient, as recorded
// in the grants ledger. Grants are loaded once and never modified.
type Grant struct {
	Metadata    map[string]string // Raw ledger columns not mapped to a field
	FilerID     string
	RecipientID string
	Amount      float64
	Seq         int // Zero-based ledger row position; identifies the grant
	Year        int // tax_year, zero when the ledger has no year column
}

// Counterparty returns the endpoint of g that is not id. For a self-grant it
// returns id.
func (g Grant) Counterparty(id string) string {
	if g.FilerID == id {
		return g.RecipientID
	}
	return g.FilerID
}

// Edge converts the grant into a graph edge.
func (g Grant) Edge() Edge {
	return Edge{
		From:   g.FilerID,
		To:     g.RecipientID,
		Amount: g.Amount,
		Year:   g.Year,
		Seq:    g.Seq,
	}
}
