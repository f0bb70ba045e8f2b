// Package service defines the interfaces shared between the command layer and
// the storage and export adapters.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/grantflow/internal/dataset"
	"github.com/Veraticus/grantflow/internal/model"
)

// DatasetStore persists raw registry and ledger tables between runs.
type DatasetStore interface {
	LoadTable(ctx context.Context, name string) (*dataset.Table, error)
	Migrate(ctx context.Context) error
	Close() error
}

// GraphWriter publishes a result graph to an external destination.
type GraphWriter interface {
	Write(ctx context.Context, graph *model.ResultGraph, provenance model.Provenance) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
