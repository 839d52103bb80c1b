package transform

import (
	"github.com/trellis-learn/trellis/pkg/curriculum"
)

// Counts summarizes what the edge transformations did to a graph.
type Counts struct {
	// Explicit is the number of edges present in the extractor output.
	Explicit int `json:"explicit"`
	// Generated is the number of containment edges derived from id shape.
	Generated int `json:"generated"`
	// Merged is the edge count after deduplication.
	Merged int `json:"merged"`
	// Reduced is the number of redundant containment edges removed.
	Reduced int `json:"reduced"`
	// Final is the edge count after reduction.
	Final int `json:"final"`
}

// Apply runs the full edge transformation sequence on g: generate implicit
// containment edges, merge them with the explicit set, and remove redundant
// containment edges. It returns a new graph (the input is untouched) and the
// per-stage counts.
func Apply(g curriculum.Graph) (curriculum.Graph, Counts) {
	generated := GenerateImplicit(g)
	merged := MergeEdges(g.Edges, generated)
	reduced := Reduce(merged)

	counts := Counts{
		Explicit:  len(g.Edges),
		Generated: len(generated),
		Merged:    len(merged),
		Reduced:   len(merged) - len(reduced),
		Final:     len(reduced),
	}
	out := curriculum.Graph{Nodes: g.Nodes, Edges: reduced}
	return out, counts
}
