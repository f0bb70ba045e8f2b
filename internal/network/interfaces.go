// Package network answers identifier-rooted questions about who funds whom:
// one-hop relationship resolution and bounded breadth-first expansion into a
// deduplicated result graph.
package network

import "github.com/Veraticus/grantflow/internal/model"

// Lookup is the read-only view of an indexed dataset the engine runs on.
// *index.Index implements it.
type Lookup interface {
	Resolve(id string) (model.Organization, bool)
	Outgoing(id string) []model.Grant
	Incoming(id string) []model.Grant
	Knows(id string) bool
	HasYears() bool
}
