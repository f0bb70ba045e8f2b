// Package storage persists imported raw datasets in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/grantflow/internal/dataset"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidTable = errors.New("invalid table")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTable checks that a table can be stored and read back unchanged.
func validateTable(t *dataset.Table) error {
	if t == nil {
		return fmt.Errorf("%w: table", ErrNilParameter)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTable)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: %s has no columns", ErrInvalidTable, t.Name)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: %s has duplicate column %q", ErrInvalidTable, t.Name, c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: %s row %d has %d cells, want %d", ErrInvalidTable, t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}
