package network

import (
	"errors"
	"fmt"
	"math"

	"github.com/Veraticus/grantflow/internal/model"
)

// ErrInvalidQuery is the sentinel wrapped by every InvalidQueryError.
var ErrInvalidQuery = errors.New("invalid query")

// InvalidQueryError reports a malformed query parameter. It is returned before
// any traversal work starts.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s %s", e.Field, e.Reason)
}

func (e *InvalidQueryError) Unwrap() error {
	return ErrInvalidQuery
}

// ValidateQuery checks q against the dataset capabilities. withYears reports
// whether the ledger has a year column.
func ValidateQuery(q model.Query, withYears bool) error {
	if q.MaxDepth < 0 {
		return &InvalidQueryError{Field: "max_depth", Reason: fmt.Sprintf("must be >= 0, got %d", q.MaxDepth)}
	}
	if math.IsNaN(q.MinAmount) || math.IsInf(q.MinAmount, 0) {
		return &InvalidQueryError{Field: "min_amount", Reason: "must be a finite number"}
	}
	if q.MinAmount < 0 {
		return &InvalidQueryError{Field: "min_amount", Reason: fmt.Sprintf("must be >= 0, got %g", q.MinAmount)}
	}
	if len(q.AllowedYears) > 0 && !withYears {
		return &InvalidQueryError{Field: "allowed_years", Reason: "cannot be used: ledger has no tax_year column"}
	}
	return nil
}
