// Package pipeline provides the core graph construction pipeline.
//
// This package implements the complete import → build → persist sequence
// shared by the CLI and any future service surface. Centralizing it keeps
// behavior identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Import: decode the extractor document and reject structural breakage
//  2. Build: normalize ids, derive implicit containment, merge, reduce,
//     validate, and check prerequisite acyclicity
//  3. Persist: write the validated graph to a store in one transaction
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    InputPath: "curriculum.json",
//	    Mode:      "strict",
//	}
//	result, err := runner.Execute(ctx, opts, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.NodeCount)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/trellis-learn/trellis/pkg/cache"
	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/curriculum/transform"
	"github.com/trellis-learn/trellis/pkg/curriculum/validate"
	"github.com/trellis-learn/trellis/pkg/errors"
)

// DefaultMode is the validation mode used when none is given. Strict is
// the safe default for hand-authored curricula; auto-extracted documents
// opt into lenient explicitly.
const DefaultMode = string(validate.ModeStrict)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// The struct supports JSON serialization for job queues and API requests.
type Options struct {
	// InputPath is the extractor document to import. Ignored when
	// Document is set.
	InputPath string `json:"input_path,omitempty"`
	// Document is the raw extractor document, for callers that already
	// hold the bytes.
	Document []byte `json:"document,omitempty"`

	// Mode selects strict or lenient edge validation.
	Mode string `json:"mode,omitempty"`
	// NoImplicit disables containment edge derivation from id shape.
	NoImplicit bool `json:"no_implicit,omitempty"`
	// NoReduce disables transitive reduction of containment edges.
	NoReduce bool `json:"no_reduce,omitempty"`

	// DryRun validates and reports without persisting.
	DryRun bool `json:"dry_run,omitempty"`
	// Refresh bypasses cached results and rebuilds from scratch.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent: calling it repeatedly has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.InputPath == "" && len(o.Document) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input path or document is required")
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if _, err := validate.ParseMode(o.Mode); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// BuildKeyOpts returns the cache key options for the build stage.
func (o *Options) BuildKeyOpts() cache.BuildKeyOpts {
	return cache.BuildKeyOpts{
		Mode:       o.Mode,
		NoImplicit: o.NoImplicit,
		NoReduce:   o.NoReduce,
	}
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run in logs and job records.
	RunID string `json:"run_id"`

	// Graph is the built and validated curriculum graph.
	Graph curriculum.Graph `json:"graph"`

	// GraphHash is the content hash of the built graph.
	GraphHash string `json:"graph_hash"`

	// Counts reports what the edge transformations did.
	Counts transform.Counts `json:"counts"`

	// DroppedEdges counts edges removed by lenient validation.
	DroppedEdges int `json:"dropped_edges"`

	// Stats contains timing and size information.
	Stats Stats `json:"stats"`

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo `json:"cache_info"`

	// Persisted reports whether the graph reached a store. False on dry
	// runs.
	Persisted bool `json:"persisted"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int           `json:"node_count"`
	EdgeCount   int           `json:"edge_count"`
	ImportTime  time.Duration `json:"import_time"`
	BuildTime   time.Duration `json:"build_time"`
	PersistTime time.Duration `json:"persist_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ImportHit bool `json:"import_hit"` // Whether the decoded document came from cache
	BuildHit  bool `json:"build_hit"`  // Whether the built graph came from cache
}
