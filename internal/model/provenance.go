package model

import (
	"time"

	"github.com/google/uuid"
)

// Provenance records which query produced an exported graph and when.
type Provenance struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	ID          string    `json:"id" yaml:"id"`
	Generator   string    `json:"generator" yaml:"generator"`
	Query       Query     `json:"query" yaml:"query"`
}

// NewProvenance stamps q with the current time and a fresh export id.
func NewProvenance(q Query, generator string) Provenance {
	return Provenance{
		ID:          uuid.NewString(),
		Query:       q,
		GeneratedAt: time.Now().UTC(),
		Generator:   generator,
	}
}
