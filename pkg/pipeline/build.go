package pipeline

import (
	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/curriculum/transform"
	"github.com/trellis-learn/trellis/pkg/curriculum/validate"
)

// BuildOutput is the result of the pure build stage.
type BuildOutput struct {
	// Graph is the transformed and validated graph.
	Graph curriculum.Graph
	// Counts reports the edge transformation stages.
	Counts transform.Counts
	// DroppedEdges counts edges removed by lenient validation.
	DroppedEdges int
}

// Build runs the construction sequence on an imported graph:
//
//  1. normalize exercise ids
//  2. check node identity, labels, and uniqueness
//  3. derive implicit containment edges and merge with explicit ones
//  4. transitively reduce the containment hierarchy
//  5. validate edges (relation legality, referential integrity)
//  6. check the REQUIRES subgraph for cycles
//
// Build is pure: it never touches a cache or store, and the input graph is
// left unmodified. The Runner wraps it with caching; tests call it
// directly.
func Build(g curriculum.Graph, opts Options) (BuildOutput, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return BuildOutput{}, err
	}
	mode, err := validate.ParseMode(opts.Mode)
	if err != nil {
		return BuildOutput{}, err
	}
	v := validate.New(mode, opts.Logger)

	work := g.Clone()
	if renamed := curriculum.Normalize(&work); renamed > 0 {
		opts.Logger.Debug("normalized exercise ids", "renamed", renamed)
	}
	if err := v.Nodes(work.Nodes); err != nil {
		return BuildOutput{}, err
	}

	var generated []curriculum.Edge
	if !opts.NoImplicit {
		generated = transform.GenerateImplicit(work)
	}
	merged := transform.MergeEdges(work.Edges, generated)
	counts := transform.Counts{
		Explicit:  len(g.Edges),
		Generated: len(generated),
		Merged:    len(merged),
	}
	work.Edges = merged

	if !opts.NoReduce {
		reduced := transform.Reduce(work.Edges)
		counts.Reduced = len(work.Edges) - len(reduced)
		work.Edges = reduced
	}
	counts.Final = len(work.Edges)

	result, err := v.Edges(work.Edges, work.NodeSet())
	if err != nil {
		return BuildOutput{}, err
	}
	work.Edges = result.Kept
	counts.Final = len(work.Edges)

	if err := validate.CheckAcyclic(work.Edges); err != nil {
		return BuildOutput{}, err
	}

	return BuildOutput{
		Graph:        work,
		Counts:       counts,
		DroppedEdges: result.Dropped,
	}, nil
}
