package validate

import (
	"sort"

	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/errors"
)

// CheckAcyclic verifies that the REQUIRES subgraph of edges contains no
// directed cycle. Containment and RELATED_TO edges are ignored; the
// hierarchy may legitimately share endpoints with prerequisite chains.
//
// Cycles are detected with depth-first search using white/gray/black
// coloring in O(N+E) time. On failure the returned error carries
// [errors.ErrCodeCycleDetected] and names a node on the offending cycle.
// A cyclic prerequisite graph is never persistable, so this check has no
// lenient form.
func CheckAcyclic(edges []curriculum.Edge) error {
	outgoing := make(map[string][]string)
	for _, e := range edges {
		if e.Relation != curriculum.RelationRequires {
			continue
		}
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
	}
	if len(outgoing) == 0 {
		return nil
	}

	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(outgoing))
	var cycleNode string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, next := range outgoing[id] {
			switch color[next] {
			case white:
				if dfs(next) {
					return true
				}
			case gray:
				cycleNode = next
				return true
			}
		}
		color[id] = black
		return false
	}

	// Sorted roots keep the reported node deterministic for a given
	// edge set.
	roots := make([]string, 0, len(outgoing))
	for id := range outgoing {
		roots = append(roots, id)
	}
	sort.Strings(roots)

	for _, id := range roots {
		if color[id] == white && dfs(id) {
			return errors.New(errors.ErrCodeCycleDetected,
				"prerequisite cycle detected through node %q", cycleNode)
		}
	}
	return nil
}
