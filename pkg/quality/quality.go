// Package quality computes editorial health reports over a built graph:
// coverage counts, missing or placeholder content, and title anomalies.
// The report is advisory and never blocks a build.
package quality

import (
	"sort"
	"strings"

	"github.com/trellis-learn/trellis/pkg/curriculum"
)

// PlaceholderDefinition is the marker some extractors emit when a source
// document had no usable text for a node.
const PlaceholderDefinition = "Content not available"

// longTitleThreshold flags titles that are likely extraction artifacts
// (a paragraph swallowed into the heading).
const longTitleThreshold = 150

// Report summarizes the editorial state of a graph.
type Report struct {
	// NodesByLabel counts nodes per label.
	NodesByLabel map[curriculum.Label]int `json:"nodes_by_label"`
	// EdgesByRelation counts edges per relation.
	EdgesByRelation map[curriculum.Relation]int `json:"edges_by_relation"`

	// TopicsPerChapter maps chapter id to the number of topics beneath
	// it in the containment hierarchy.
	TopicsPerChapter map[string]int `json:"topics_per_chapter"`

	// MissingDefinitions lists learnable nodes whose definition is empty
	// or the extractor placeholder.
	MissingDefinitions []string `json:"missing_definitions"`
	// EmptyKeyPoints lists topic and subtopic nodes without key points.
	EmptyKeyPoints []string `json:"empty_key_points"`
	// LongTitles lists nodes whose title exceeds the anomaly threshold.
	LongTitles []string `json:"long_titles"`
	// DuplicateTitles maps a title to the ids sharing it, for titles
	// used by more than one node.
	DuplicateTitles map[string][]string `json:"duplicate_titles"`

	// AvgDefinitionLength is the mean rune length of non-placeholder
	// definitions, zero when none exist.
	AvgDefinitionLength float64 `json:"avg_definition_length"`
}

// learnable reports whether a node is expected to carry content.
// Structural nodes (chapters, units, containers) often have none.
func learnable(label curriculum.Label) bool {
	switch label {
	case curriculum.LabelTopic, curriculum.LabelSubtopic, curriculum.LabelExercise:
		return true
	}
	return false
}

// Analyze computes a quality report for g. The graph is read only; Analyze
// is safe to run on a graph shared with other readers.
func Analyze(g curriculum.Graph) Report {
	report := Report{
		NodesByLabel:     make(map[curriculum.Label]int),
		EdgesByRelation:  make(map[curriculum.Relation]int),
		TopicsPerChapter: make(map[string]int),
		DuplicateTitles:  make(map[string][]string),
	}

	labels := make(map[string]curriculum.Label, len(g.Nodes))
	byTitle := make(map[string][]string)
	defLengthSum := 0
	defCount := 0

	for _, n := range g.Nodes {
		report.NodesByLabel[n.Label]++
		labels[n.ID] = n.Label
		byTitle[n.Title] = append(byTitle[n.Title], n.ID)

		if len([]rune(n.Title)) > longTitleThreshold {
			report.LongTitles = append(report.LongTitles, n.ID)
		}
		if !learnable(n.Label) {
			continue
		}
		def := strings.TrimSpace(n.Definition)
		if def == "" || def == PlaceholderDefinition {
			report.MissingDefinitions = append(report.MissingDefinitions, n.ID)
		} else {
			defLengthSum += len([]rune(def))
			defCount++
		}
		if n.Label != curriculum.LabelExercise && len(n.KeyPoints) == 0 {
			report.EmptyKeyPoints = append(report.EmptyKeyPoints, n.ID)
		}
	}

	for title, ids := range byTitle {
		if title != "" && len(ids) > 1 {
			sort.Strings(ids)
			report.DuplicateTitles[title] = ids
		}
	}
	if defCount > 0 {
		report.AvgDefinitionLength = float64(defLengthSum) / float64(defCount)
	}

	for _, e := range g.Edges {
		report.EdgesByRelation[e.Relation]++
	}
	countTopicsPerChapter(g, labels, report.TopicsPerChapter)

	sort.Strings(report.MissingDefinitions)
	sort.Strings(report.EmptyKeyPoints)
	sort.Strings(report.LongTitles)
	return report
}

// countTopicsPerChapter walks the containment edges down from each chapter
// and counts reachable topic nodes.
func countTopicsPerChapter(g curriculum.Graph, labels map[string]curriculum.Label, out map[string]int) {
	children := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Relation.Containment() {
			children[e.Source] = append(children[e.Source], e.Target)
		}
	}

	for _, n := range g.Nodes {
		if n.Label != curriculum.LabelChapter {
			continue
		}
		count := 0
		visited := map[string]bool{n.ID: true}
		stack := append([]string(nil), children[n.ID]...)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[id] {
				continue
			}
			visited[id] = true
			if labels[id] == curriculum.LabelTopic {
				count++
			}
			stack = append(stack, children[id]...)
		}
		out[n.ID] = count
	}
}

// Issues returns the total number of flagged problems in the report.
func (r Report) Issues() int {
	return len(r.MissingDefinitions) + len(r.EmptyKeyPoints) + len(r.LongTitles) + len(r.DuplicateTitles)
}
