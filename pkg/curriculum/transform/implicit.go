package transform

import (
	"github.com/trellis-learn/trellis/pkg/curriculum"
)

// GenerateImplicit derives structural containment edges from node id shape.
//
// For every node whose id extends another node's id by one or more trailing
// segments, an edge is produced from the NEAREST such ancestor to the node:
// HAS_EXERCISE when the child is an exercise, HAS_PART otherwise. Only the
// nearest ancestor is linked, so a fully populated hierarchy yields a chain
// rather than a fan-out, and a missing intermediate level links the child to
// the closest ancestor that does exist.
//
// Generated edges are marked so that explicit extractor edges win during
// merging. Nodes with no discoverable ancestor are roots and produce
// nothing. The input graph is not modified.
func GenerateImplicit(g curriculum.Graph) []curriculum.Edge {
	known := g.NodeSet()
	labels := make(map[string]curriculum.Label, len(g.Nodes))
	for _, n := range g.Nodes {
		labels[n.ID] = n.Label
	}

	var edges []curriculum.Edge
	for _, n := range g.Nodes {
		parent, ok := n.ParentID(known)
		if !ok {
			continue
		}
		relation := curriculum.RelationHasPart
		if labels[n.ID] == curriculum.LabelExercise {
			relation = curriculum.RelationHasExercise
		}
		edges = append(edges, curriculum.Edge{
			Source:    parent,
			Target:    n.ID,
			Relation:  relation,
			Generated: true,
		})
	}
	return edges
}
