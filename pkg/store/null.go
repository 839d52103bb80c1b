package store

import (
	"context"

	"github.com/trellis-learn/trellis/pkg/curriculum"
)

// NullStore discards everything. It backs dry runs, where the pipeline
// should validate and report without touching a database, and tests.
type NullStore struct {
	// Persisted records the graphs handed to Persist, for assertions.
	Persisted []curriculum.Graph
	// SchemaCalls counts EnsureSchema invocations.
	SchemaCalls int

	// Err, when set, is returned by Persist to simulate store failures.
	Err error
}

// NewNullStore creates a store that records but never writes.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Name implements Store.
func (s *NullStore) Name() string { return "null" }

// EnsureSchema counts the call and succeeds.
func (s *NullStore) EnsureSchema(ctx context.Context) error {
	s.SchemaCalls++
	return nil
}

// Persist records the graph, or fails if Err is set.
func (s *NullStore) Persist(ctx context.Context, g curriculum.Graph) error {
	if s.Err != nil {
		return s.Err
	}
	s.Persisted = append(s.Persisted, g)
	return nil
}

// Close does nothing.
func (s *NullStore) Close(ctx context.Context) error { return nil }

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
