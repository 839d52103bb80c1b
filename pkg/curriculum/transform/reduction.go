package transform

import (
	"github.com/trellis-learn/trellis/pkg/curriculum"
)

// Reduce removes redundant containment edges: an edge u -> v is redundant
// when v is still reachable from u through containment edges without using
// the edge itself. Non-containment edges (REQUIRES, RELATED_TO) are never
// candidates for removal and never contribute to reachability.
//
// Edges are examined in slice order against the current (already reduced)
// edge set, so removal is deterministic for a given input order. Reduce
// returns the surviving edges, preserving input order.
func Reduce(edges []curriculum.Edge) []curriculum.Edge {
	adjacency := make(map[string][]string)
	for _, e := range edges {
		if e.Relation.Containment() {
			adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		}
	}

	kept := make([]curriculum.Edge, 0, len(edges))
	for _, e := range edges {
		if !e.Relation.Containment() {
			kept = append(kept, e)
			continue
		}
		if reachableWithout(adjacency, e.Source, e.Target) {
			adjacency[e.Source] = removeFirst(adjacency[e.Source], e.Target)
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// reachableWithout reports whether target is reachable from source in the
// containment adjacency when the direct source -> target hop is skipped.
func reachableWithout(adjacency map[string][]string, source, target string) bool {
	visited := map[string]bool{source: true}
	queue := make([]string, 0, len(adjacency[source]))

	skippedDirect := false
	for _, next := range adjacency[source] {
		if next == target && !skippedDirect {
			skippedDirect = true
			continue
		}
		if !visited[next] {
			visited[next] = true
			queue = append(queue, next)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == target {
			return true
		}
		for _, next := range adjacency[current] {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// removeFirst deletes the first occurrence of value from s in place.
func removeFirst(s []string, value string) []string {
	for i, v := range s {
		if v == value {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
