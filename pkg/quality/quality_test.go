package quality

import (
	"strings"
	"testing"

	"github.com/trellis-learn/trellis/pkg/curriculum"
)

func testGraph() curriculum.Graph {
	return curriculum.Graph{
		Nodes: []curriculum.Node{
			{ID: "CHAP_01", Title: "Mechanics", Label: curriculum.LabelChapter},
			{ID: "CHAP_01_SUB_1", Title: "Kinematics", Label: curriculum.LabelTopic,
				Content: curriculum.Content{Definition: "Motion study.", KeyPoints: []string{"velocity"}}},
			{ID: "CHAP_01_SUB_2", Title: "Dynamics", Label: curriculum.LabelTopic,
				Content: curriculum.Content{Definition: PlaceholderDefinition}},
			{ID: "CHAP_01_SUB_2_1", Title: "Kinematics", Label: curriculum.LabelSubtopic,
				Content: curriculum.Content{Definition: "Forces in motion.", KeyPoints: []string{"F=ma"}}},
			{ID: "CHAP_02", Title: strings.Repeat("x", 151), Label: curriculum.LabelChapter},
		},
		Edges: []curriculum.Edge{
			{Source: "CHAP_01", Target: "CHAP_01_SUB_1", Relation: curriculum.RelationHasPart},
			{Source: "CHAP_01", Target: "CHAP_01_SUB_2", Relation: curriculum.RelationHasPart},
			{Source: "CHAP_01_SUB_2", Target: "CHAP_01_SUB_2_1", Relation: curriculum.RelationHasPart},
			{Source: "CHAP_01_SUB_1", Target: "CHAP_01_SUB_2", Relation: curriculum.RelationRequires},
		},
	}
}

func TestAnalyzeCounts(t *testing.T) {
	r := Analyze(testGraph())

	if r.NodesByLabel[curriculum.LabelChapter] != 2 {
		t.Errorf("chapters = %d, want 2", r.NodesByLabel[curriculum.LabelChapter])
	}
	if r.NodesByLabel[curriculum.LabelTopic] != 2 {
		t.Errorf("topics = %d, want 2", r.NodesByLabel[curriculum.LabelTopic])
	}
	if r.EdgesByRelation[curriculum.RelationHasPart] != 3 {
		t.Errorf("HAS_PART = %d, want 3", r.EdgesByRelation[curriculum.RelationHasPart])
	}
	if r.EdgesByRelation[curriculum.RelationRequires] != 1 {
		t.Errorf("REQUIRES = %d, want 1", r.EdgesByRelation[curriculum.RelationRequires])
	}
}

func TestAnalyzeTopicsPerChapter(t *testing.T) {
	r := Analyze(testGraph())
	if r.TopicsPerChapter["CHAP_01"] != 2 {
		t.Errorf("CHAP_01 topics = %d, want 2", r.TopicsPerChapter["CHAP_01"])
	}
	if r.TopicsPerChapter["CHAP_02"] != 0 {
		t.Errorf("CHAP_02 topics = %d, want 0", r.TopicsPerChapter["CHAP_02"])
	}
}

func TestAnalyzeContentFlags(t *testing.T) {
	r := Analyze(testGraph())

	// Placeholder definition counts as missing.
	if len(r.MissingDefinitions) != 1 || r.MissingDefinitions[0] != "CHAP_01_SUB_2" {
		t.Errorf("MissingDefinitions = %v", r.MissingDefinitions)
	}
	// The placeholder topic also has no key points.
	if len(r.EmptyKeyPoints) != 1 || r.EmptyKeyPoints[0] != "CHAP_01_SUB_2" {
		t.Errorf("EmptyKeyPoints = %v", r.EmptyKeyPoints)
	}
	if len(r.LongTitles) != 1 || r.LongTitles[0] != "CHAP_02" {
		t.Errorf("LongTitles = %v", r.LongTitles)
	}
	ids, ok := r.DuplicateTitles["Kinematics"]
	if !ok || len(ids) != 2 {
		t.Errorf("DuplicateTitles = %v", r.DuplicateTitles)
	}

	// "Motion study." is 13 runes, "Forces in motion." is 17.
	if r.AvgDefinitionLength != 15 {
		t.Errorf("AvgDefinitionLength = %v, want 15", r.AvgDefinitionLength)
	}
	if r.Issues() != 4 {
		t.Errorf("Issues() = %d, want 4", r.Issues())
	}
}

func TestAnalyzeEmptyGraph(t *testing.T) {
	r := Analyze(curriculum.Graph{})
	if r.Issues() != 0 {
		t.Errorf("empty graph issues = %d", r.Issues())
	}
	if r.AvgDefinitionLength != 0 {
		t.Errorf("AvgDefinitionLength = %v, want 0", r.AvgDefinitionLength)
	}
}
