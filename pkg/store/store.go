package store

import (
	"context"

	"github.com/trellis-learn/trellis/pkg/curriculum"
)

// Store persists a validated curriculum graph.
//
// Persist is all-or-nothing: implementations write nodes and edges inside a
// single transaction, so a failure leaves the store exactly as it was. The
// pipeline only calls Persist after every validation stage has passed; a
// Store never sees a graph with dangling edges or a cyclic prerequisite
// chain.
type Store interface {
	// Name identifies the backend in logs and metrics ("neo4j", "mongo").
	Name() string

	// EnsureSchema creates constraints and indexes if missing. Safe to
	// call repeatedly.
	EnsureSchema(ctx context.Context) error

	// Persist upserts the graph. Re-running with the same graph is a
	// no-op at the data level: nodes and edges are keyed by their
	// stable identity.
	Persist(ctx context.Context, g curriculum.Graph) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
