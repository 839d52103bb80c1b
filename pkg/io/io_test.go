package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/errors"
)

const sampleDoc = `{
  "nodes": [
    {"id": "CHAP_01", "title": "Mechanics", "label": "Chapter"},
    {"id": "CHAP_01_SUB_1", "title": "Kinematics", "label": "Topic",
     "definition": "Motion without regard to cause.",
     "key_points": ["displacement", "velocity"]}
  ],
  "relationships": [
    {"source": "CHAP_01", "target": "CHAP_01_SUB_1", "relation": "HAS_PART", "order": 1}
  ]
}`

func TestReadGraph(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("graph = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if g.Nodes[1].Definition != "Motion without regard to cause." {
		t.Errorf("content payload not decoded: %+v", g.Nodes[1].Content)
	}
	if g.Edges[0].Props["order"] != 1.0 {
		t.Errorf("inline edge prop not collected: %v", g.Edges[0].Props)
	}
}

func TestReadGraphRejectsDuplicateIDs(t *testing.T) {
	doc := `{"nodes":[{"id":"A","label":"Topic"},{"id":"A","label":"Topic"}],"relationships":[]}`
	_, err := ReadGraph(strings.NewReader(doc))
	if !errors.Is(err, errors.ErrCodeDuplicateNode) {
		t.Errorf("err = %v, want duplicate_node", err)
	}
}

func TestReadGraphRejectsEmptyID(t *testing.T) {
	doc := `{"nodes":[{"id":"","label":"Topic"}],"relationships":[]}`
	_, err := ReadGraph(strings.NewReader(doc))
	if !errors.Is(err, errors.ErrCodeInvalidNodeID) {
		t.Errorf("err = %v, want invalid_node_id", err)
	}
}

func TestReadGraphMalformedJSON(t *testing.T) {
	_, err := ReadGraph(strings.NewReader(`{"nodes": [`))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want invalid_input", err)
	}
}

func TestImportFileMissing(t *testing.T) {
	_, err := ImportFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want file_not_found", err)
	}
}

func TestRoundTrip(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Errorf("round trip changed counts: %d/%d vs %d/%d",
			back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	if back.Edges[0].Props["order"] != g.Edges[0].Props["order"] {
		t.Error("round trip lost edge properties")
	}
}

func TestExportFile(t *testing.T) {
	g := curriculum.Graph{
		Nodes: []curriculum.Node{{ID: "A", Title: "Alpha", Label: curriculum.LabelChapter}},
		Edges: []curriculum.Edge{},
	}
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportFile(g, path); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	back, err := ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if back.NodeCount() != 1 || back.Nodes[0].Title != "Alpha" {
		t.Errorf("exported graph = %+v", back)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".trellis-export-") {
			t.Errorf("stray temp file %s", e.Name())
		}
	}
}

// The repository ships a sample extractor document; it must stay importable
// as the decoder and model evolve.
func TestImportShippedExample(t *testing.T) {
	g, err := ImportFile(filepath.Join("..", "..", "examples", "curriculum.json"))
	if err != nil {
		t.Fatalf("ImportFile() error: %v", err)
	}

	if g.NodeCount() != 5 {
		t.Errorf("NodeCount() = %d, want 5", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}

	var topic *curriculum.Node
	for i := range g.Nodes {
		if g.Nodes[i].ID == "CHAP_01_SUB_1" {
			topic = &g.Nodes[i]
		}
	}
	if topic == nil {
		t.Fatal("example should contain node CHAP_01_SUB_1")
	}
	if topic.Buckets == nil || len(topic.Buckets.Mechanics) == 0 {
		t.Error("example topic should carry mechanics bucket entries")
	}
}
