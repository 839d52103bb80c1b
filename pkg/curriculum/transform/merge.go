package transform

import (
	"github.com/trellis-learn/trellis/pkg/curriculum"
)

// MergeEdges combines explicit extractor edges with generated containment
// edges and deduplicates on the (source, target, relation) identity triple.
//
// When an explicit and a generated edge share a key, the explicit edge wins:
// its properties are authoritative and the result is not marked generated.
// Among explicit duplicates the first occurrence wins. Order of first
// appearance is preserved, explicit edges first.
func MergeEdges(explicit, generated []curriculum.Edge) []curriculum.Edge {
	merged := make([]curriculum.Edge, 0, len(explicit)+len(generated))
	seen := make(map[curriculum.EdgeKey]bool, len(explicit)+len(generated))

	for _, e := range explicit {
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, e)
	}
	for _, e := range generated {
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, e)
	}
	return merged
}
