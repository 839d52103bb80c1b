package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/trellis-learn/trellis/pkg/cache"
	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/errors"
	"github.com/trellis-learn/trellis/pkg/store"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func testOptions(doc string) Options {
	return Options{
		Document: []byte(doc),
		Logger:   quietLogger(),
	}
}

const validDoc = `{
  "nodes": [
    {"id": "A", "title": "Alpha", "label": "Chapter"},
    {"id": "A_1", "title": "First", "label": "Topic"},
    {"id": "A_1_1", "title": "Deep", "label": "Subtopic"},
    {"id": "B", "title": "Beta", "label": "Chapter"}
  ],
  "relationships": [
    {"source": "A_1", "target": "B", "relation": "REQUIRES"}
  ]
}`

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty options: err = %v", err)
	}

	opts = testOptions(`{}`)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("valid options: %v", err)
	}
	if opts.Mode != "strict" {
		t.Errorf("default mode = %q, want strict", opts.Mode)
	}

	opts = testOptions(`{}`)
	opts.Mode = "relaxed"
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestBuildProducesImplicitAndReducedEdges(t *testing.T) {
	g := curriculum.Graph{
		Nodes: []curriculum.Node{
			{ID: "A", Label: curriculum.LabelChapter},
			{ID: "A_1", Label: curriculum.LabelTopic},
			{ID: "A_1_1", Label: curriculum.LabelSubtopic},
		},
		Edges: []curriculum.Edge{
			{Source: "A", Target: "A_1_1", Relation: curriculum.RelationHasPart},
		},
	}
	out, err := Build(g, testOptions(`{}`))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out.Counts.Generated != 2 || out.Counts.Reduced != 1 {
		t.Errorf("counts = %+v", out.Counts)
	}
	if out.Graph.EdgeCount() != 2 {
		t.Errorf("final edges = %d, want 2", out.Graph.EdgeCount())
	}
	// Input untouched.
	if len(g.Edges) != 1 {
		t.Error("Build must not modify its input")
	}
}

func TestBuildFlagsDisableStages(t *testing.T) {
	g := curriculum.Graph{
		Nodes: []curriculum.Node{
			{ID: "A", Label: curriculum.LabelChapter},
			{ID: "A_1", Label: curriculum.LabelTopic},
		},
	}

	opts := testOptions(`{}`)
	opts.NoImplicit = true
	out, err := Build(g, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out.Counts.Generated != 0 || out.Graph.EdgeCount() != 0 {
		t.Errorf("NoImplicit ignored: %+v", out.Counts)
	}

	chain := curriculum.Graph{
		Nodes: g.Nodes,
		Edges: []curriculum.Edge{
			{Source: "A", Target: "A_1", Relation: curriculum.RelationHasPart},
		},
	}
	opts = testOptions(`{}`)
	opts.NoImplicit = true
	opts.NoReduce = true
	out, err = Build(chain, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out.Counts.Reduced != 0 {
		t.Errorf("NoReduce ignored: %+v", out.Counts)
	}
}

func TestBuildRejectsCycle(t *testing.T) {
	g := curriculum.Graph{
		Nodes: []curriculum.Node{
			{ID: "A", Label: curriculum.LabelTopic},
			{ID: "B", Label: curriculum.LabelTopic},
		},
		Edges: []curriculum.Edge{
			{Source: "A", Target: "B", Relation: curriculum.RelationRequires},
			{Source: "B", Target: "A", Relation: curriculum.RelationRequires},
		},
	}
	_, err := Build(g, testOptions(`{}`))
	if !errors.Is(err, errors.ErrCodeCycleDetected) {
		t.Errorf("err = %v, want cycle_detected", err)
	}
}

func TestBuildLenientDropsDangling(t *testing.T) {
	g := curriculum.Graph{
		Nodes: []curriculum.Node{{ID: "A", Label: curriculum.LabelTopic}},
		Edges: []curriculum.Edge{
			{Source: "A", Target: "GHOST", Relation: curriculum.RelationRequires},
		},
	}

	_, err := Build(g, testOptions(`{}`))
	if !errors.Is(err, errors.ErrCodeDanglingReference) {
		t.Errorf("strict: err = %v", err)
	}

	opts := testOptions(`{}`)
	opts.Mode = "lenient"
	out, err := Build(g, opts)
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if out.DroppedEdges != 1 || out.Graph.EdgeCount() != 0 {
		t.Errorf("lenient output = %+v", out)
	}
}

func TestExecuteDryRun(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	opts := testOptions(validDoc)
	opts.DryRun = true

	result, err := runner.Execute(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Persisted {
		t.Error("dry run must not persist")
	}
	if result.RunID == "" {
		t.Error("RunID missing")
	}
	if result.Stats.NodeCount != 4 {
		t.Errorf("NodeCount = %d, want 4", result.Stats.NodeCount)
	}
	// A->A_1, A_1->A_1_1 implicit plus the explicit REQUIRES edge.
	if result.Stats.EdgeCount != 3 {
		t.Errorf("EdgeCount = %d, want 3", result.Stats.EdgeCount)
	}
	if result.GraphHash == "" {
		t.Error("GraphHash missing")
	}
}

func TestExecutePersists(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	st := store.NewNullStore()

	result, err := runner.Execute(context.Background(), testOptions(validDoc), st)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Persisted {
		t.Error("result should be marked persisted")
	}
	if st.SchemaCalls != 1 || len(st.Persisted) != 1 {
		t.Errorf("store calls = schema %d, persist %d", st.SchemaCalls, len(st.Persisted))
	}
	if st.Persisted[0].NodeCount() != 4 {
		t.Errorf("persisted nodes = %d", st.Persisted[0].NodeCount())
	}
}

func TestExecuteValidationFailureSkipsStore(t *testing.T) {
	doc := `{
  "nodes": [{"id": "A", "title": "Alpha", "label": "Chapter"}],
  "relationships": [{"source": "A", "target": "GHOST", "relation": "FOO"}]
}`
	runner := NewRunner(nil, nil, quietLogger())
	st := store.NewNullStore()

	_, err := runner.Execute(context.Background(), testOptions(doc), st)
	if !errors.Is(err, errors.ErrCodeInvalidRelation) {
		t.Fatalf("err = %v, want invalid_relation", err)
	}
	if st.SchemaCalls != 0 || len(st.Persisted) != 0 {
		t.Error("store must not be touched when validation fails")
	}
}

func TestExecuteStoreFailurePropagates(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	st := store.NewNullStore()
	st.Err = errors.New(errors.ErrCodeStore, "connection lost")

	_, err := runner.Execute(context.Background(), testOptions(validDoc), st)
	if !errors.Is(err, errors.ErrCodeStore) {
		t.Errorf("err = %v, want store error", err)
	}
}

func TestExecuteRequiresStore(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	_, err := runner.Execute(context.Background(), testOptions(validDoc), nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want invalid_input", err)
	}
}

func TestBuildCacheHit(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	defer runner.Close()

	opts := testOptions(validDoc)
	first, err := runner.Execute(ctx, opts, store.NewNullStore())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CacheInfo.BuildHit {
		t.Error("first run should miss the build cache")
	}

	second, err := runner.Execute(ctx, testOptions(validDoc), store.NewNullStore())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.CacheInfo.BuildHit || !second.CacheInfo.ImportHit {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	if second.GraphHash != first.GraphHash {
		t.Error("cached build should reproduce the same graph")
	}
	if second.RunID == first.RunID {
		t.Error("each run needs a fresh RunID")
	}

	// Refresh bypasses the cache.
	opts = testOptions(validDoc)
	opts.Refresh = true
	third, err := runner.Execute(ctx, opts, store.NewNullStore())
	if err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	if third.CacheInfo.BuildHit || third.CacheInfo.ImportHit {
		t.Errorf("refresh run cache info = %+v", third.CacheInfo)
	}
}

func TestImportFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(validDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, nil, quietLogger())
	g, err := runner.Import(context.Background(), Options{InputPath: path, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if g.NodeCount() != 4 {
		t.Errorf("NodeCount = %d", g.NodeCount())
	}

	_, err = runner.Import(context.Background(), Options{InputPath: path + ".missing", Logger: quietLogger()})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}
