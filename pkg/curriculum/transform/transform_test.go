package transform

import (
	"testing"

	"github.com/trellis-learn/trellis/pkg/curriculum"
)

func edge(source, target string, relation curriculum.Relation) curriculum.Edge {
	return curriculum.Edge{Source: source, Target: target, Relation: relation}
}

func hasEdge(edges []curriculum.Edge, source, target string, relation curriculum.Relation) bool {
	for _, e := range edges {
		if e.Source == source && e.Target == target && e.Relation == relation {
			return true
		}
	}
	return false
}

func TestGenerateImplicitNearestAncestor(t *testing.T) {
	g := curriculum.Graph{
		Nodes: []curriculum.Node{
			{ID: "A", Label: curriculum.LabelChapter},
			{ID: "A_1", Label: curriculum.LabelTopic},
			{ID: "A_1_1", Label: curriculum.LabelSubtopic},
			{ID: "B", Label: curriculum.LabelChapter},
		},
	}
	got := GenerateImplicit(g)
	if len(got) != 2 {
		t.Fatalf("generated %d edges, want 2: %v", len(got), got)
	}
	if !hasEdge(got, "A", "A_1", curriculum.RelationHasPart) {
		t.Error("missing A -> A_1 HAS_PART")
	}
	if !hasEdge(got, "A_1", "A_1_1", curriculum.RelationHasPart) {
		t.Error("missing A_1 -> A_1_1 HAS_PART")
	}
	if hasEdge(got, "A", "A_1_1", curriculum.RelationHasPart) {
		t.Error("skip-level edge A -> A_1_1 must not be generated")
	}
	for _, e := range got {
		if !e.Generated {
			t.Errorf("edge %s -> %s not marked generated", e.Source, e.Target)
		}
	}
}

func TestGenerateImplicitSkipsMissingLevel(t *testing.T) {
	// A_1 is absent, so A_1_1 links to A directly.
	g := curriculum.Graph{
		Nodes: []curriculum.Node{
			{ID: "A", Label: curriculum.LabelChapter},
			{ID: "A_1_1", Label: curriculum.LabelSubtopic},
		},
	}
	got := GenerateImplicit(g)
	if len(got) != 1 || !hasEdge(got, "A", "A_1_1", curriculum.RelationHasPart) {
		t.Fatalf("generated = %v, want single A -> A_1_1", got)
	}
}

func TestGenerateImplicitExerciseRelation(t *testing.T) {
	g := curriculum.Graph{
		Nodes: []curriculum.Node{
			{ID: "A_1", Label: curriculum.LabelTopic},
			{ID: "A_1_Q1_EX", Label: curriculum.LabelExercise},
		},
	}
	got := GenerateImplicit(g)
	if len(got) != 1 {
		t.Fatalf("generated %d edges, want 1", len(got))
	}
	if got[0].Relation != curriculum.RelationHasExercise {
		t.Errorf("relation = %q, want HAS_EXERCISE", got[0].Relation)
	}
}

func TestMergeEdgesExplicitWins(t *testing.T) {
	explicit := []curriculum.Edge{
		{Source: "A", Target: "A_1", Relation: curriculum.RelationHasPart, Props: map[string]any{"order": 1}},
	}
	generated := []curriculum.Edge{
		{Source: "A", Target: "A_1", Relation: curriculum.RelationHasPart, Generated: true},
		{Source: "A_1", Target: "A_1_1", Relation: curriculum.RelationHasPart, Generated: true},
	}
	merged := MergeEdges(explicit, generated)
	if len(merged) != 2 {
		t.Fatalf("merged %d edges, want 2: %v", len(merged), merged)
	}
	if merged[0].Generated {
		t.Error("explicit edge must win over generated duplicate")
	}
	if merged[0].Props["order"] != 1 {
		t.Error("explicit edge properties must be preserved")
	}
	if !merged[1].Generated {
		t.Error("unmatched generated edge must survive as generated")
	}
}

func TestMergeEdgesDistinctRelationsKept(t *testing.T) {
	explicit := []curriculum.Edge{
		edge("A", "B", curriculum.RelationRequires),
		edge("A", "B", curriculum.RelationRelatedTo),
		edge("A", "B", curriculum.RelationRequires),
	}
	merged := MergeEdges(explicit, nil)
	if len(merged) != 2 {
		t.Fatalf("merged %d edges, want 2 (same endpoints, different relations)", len(merged))
	}
}

func TestReduceRemovesSkipEdge(t *testing.T) {
	edges := []curriculum.Edge{
		edge("A", "A_1", curriculum.RelationHasPart),
		edge("A_1", "A_1_1", curriculum.RelationHasPart),
		edge("A", "A_1_1", curriculum.RelationHasPart),
	}
	got := Reduce(edges)
	if len(got) != 2 {
		t.Fatalf("reduced to %d edges, want 2: %v", len(got), got)
	}
	if hasEdge(got, "A", "A_1_1", curriculum.RelationHasPart) {
		t.Error("redundant A -> A_1_1 must be removed")
	}
	if !hasEdge(got, "A", "A_1", curriculum.RelationHasPart) || !hasEdge(got, "A_1", "A_1_1", curriculum.RelationHasPart) {
		t.Error("two-hop chain must survive")
	}
}

func TestReduceKeepsEdgeWithoutAlternatePath(t *testing.T) {
	edges := []curriculum.Edge{
		edge("A", "C", curriculum.RelationHasPart),
		edge("A", "B", curriculum.RelationHasPart),
	}
	got := Reduce(edges)
	if len(got) != 2 {
		t.Fatalf("reduced to %d edges, want 2 (no alternate paths exist)", len(got))
	}
}

func TestReduceIgnoresNonContainment(t *testing.T) {
	// A REQUIRES path must neither be removed nor make a containment
	// edge look redundant.
	edges := []curriculum.Edge{
		edge("A", "B", curriculum.RelationRequires),
		edge("B", "C", curriculum.RelationRequires),
		edge("A", "C", curriculum.RelationHasPart),
		edge("A", "C", curriculum.RelationRequires),
	}
	got := Reduce(edges)
	if len(got) != 4 {
		t.Fatalf("reduced to %d edges, want 4: %v", len(got), got)
	}
}

func TestApplyConcreteHierarchy(t *testing.T) {
	g := curriculum.Graph{
		Nodes: []curriculum.Node{
			{ID: "A", Label: curriculum.LabelChapter},
			{ID: "A_1", Label: curriculum.LabelTopic},
			{ID: "A_1_1", Label: curriculum.LabelSubtopic},
			{ID: "B", Label: curriculum.LabelChapter},
		},
		// Synthetic skip-level edge that reduction must eliminate.
		Edges: []curriculum.Edge{
			edge("A", "A_1_1", curriculum.RelationHasPart),
		},
	}
	out, counts := Apply(g)
	if counts.Explicit != 1 || counts.Generated != 2 {
		t.Errorf("counts = %+v, want 1 explicit / 2 generated", counts)
	}
	if counts.Reduced != 1 || counts.Final != 2 {
		t.Errorf("counts = %+v, want 1 reduced / 2 final", counts)
	}
	if hasEdge(out.Edges, "A", "A_1_1", curriculum.RelationHasPart) {
		t.Error("skip-level edge survived reduction")
	}
	if !hasEdge(out.Edges, "A", "A_1", curriculum.RelationHasPart) || !hasEdge(out.Edges, "A_1", "A_1_1", curriculum.RelationHasPart) {
		t.Error("chain edges missing from final set")
	}
	if len(g.Edges) != 1 {
		t.Error("input graph must not be modified")
	}
}
