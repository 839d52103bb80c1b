package pipeline

import (
	"context"
	stderrors "errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/trellis-learn/trellis/pkg/cache"
	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/curriculum/transform"
	"github.com/trellis-learn/trellis/pkg/errors"
	trellisio "github.com/trellis-learn/trellis/pkg/io"
	"github.com/trellis-learn/trellis/pkg/observability"
	"github.com/trellis-learn/trellis/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store run results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete import → build → persist pipeline.
//
// The store may be nil only when opts.DryRun is set. Persistence is
// all-or-nothing: any build or validation failure returns before the store
// is touched, and the store's own transaction covers the write itself.
func (r *Runner) Execute(ctx context.Context, opts Options, st store.Store) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if st == nil && !opts.DryRun {
		return nil, errors.New(errors.ErrCodeInvalidInput, "store is required unless dry-run is set")
	}

	result := &Result{RunID: uuid.NewString()}
	source := opts.InputPath
	if source == "" {
		source = "(inline)"
	}
	observability.Pipeline().OnBuildStart(ctx, source)

	// Stage 1: Import
	importStart := time.Now()
	g, contentHash, importHit, err := r.ImportWithCacheInfo(ctx, opts)
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, source, 0, 0, time.Since(importStart), err)
		return nil, err
	}
	result.Stats.ImportTime = time.Since(importStart)
	result.CacheInfo.ImportHit = importHit

	r.Logger.Info("imported document",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.ImportTime)

	// Stage 2: Build
	buildStart := time.Now()
	out, buildHit, err := r.BuildWithCacheInfo(ctx, g, contentHash, opts)
	buildTime := time.Since(buildStart)
	observability.Pipeline().OnBuildComplete(ctx, source,
		out.Graph.NodeCount(), out.Graph.EdgeCount(), buildTime, err)
	observability.Pipeline().OnValidateComplete(ctx, opts.Mode,
		out.Graph.EdgeCount(), out.DroppedEdges, err)
	if err != nil {
		return nil, err
	}
	result.Graph = out.Graph
	result.Counts = out.Counts
	result.DroppedEdges = out.DroppedEdges
	result.Stats.BuildTime = buildTime
	result.Stats.NodeCount = out.Graph.NodeCount()
	result.Stats.EdgeCount = out.Graph.EdgeCount()
	result.CacheInfo.BuildHit = buildHit

	if data, err := trellisio.MarshalGraph(out.Graph); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("built graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"generated", out.Counts.Generated,
		"reduced", out.Counts.Reduced,
		"dropped", out.DroppedEdges,
		"duration", result.Stats.BuildTime)

	// Stage 3: Persist
	if opts.DryRun {
		r.Logger.Info("dry run, skipping persistence")
		return result, nil
	}

	persistStart := time.Now()
	observability.Pipeline().OnPersistStart(ctx, st.Name(),
		result.Stats.NodeCount, result.Stats.EdgeCount)
	err = r.persist(ctx, st, out.Graph)
	result.Stats.PersistTime = time.Since(persistStart)
	observability.Pipeline().OnPersistComplete(ctx, st.Name(), result.Stats.PersistTime, err)
	if err != nil {
		return nil, err
	}
	result.Persisted = true

	r.Logger.Info("persisted graph",
		"store", st.Name(),
		"duration", result.Stats.PersistTime)
	return result, nil
}

// ImportWithCacheInfo loads and decodes the extractor document, returning
// the graph, its content hash, and whether the decode came from cache.
func (r *Runner) ImportWithCacheInfo(ctx context.Context, opts Options) (curriculum.Graph, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return curriculum.Graph{}, "", false, err
	}
	r.applyLogger(&opts)

	raw := opts.Document
	if len(raw) == 0 {
		data, err := os.ReadFile(opts.InputPath)
		if err != nil {
			if os.IsNotExist(err) {
				return curriculum.Graph{}, "", false,
					errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.InputPath)
			}
			return curriculum.Graph{}, "", false, err
		}
		raw = data
	}
	contentHash := cache.Hash(raw)
	cacheKey := r.Keyer.ImportKey(contentHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "import")
			if g, err := trellisio.ReadGraphBytes(data); err == nil {
				return g, contentHash, true, nil
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "import")
		}
	}

	g, err := trellisio.ReadGraphBytes(raw)
	if err != nil {
		return curriculum.Graph{}, "", false, err
	}

	if !opts.Refresh {
		if data, err := trellisio.MarshalGraph(g); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLImport)
			observability.Cache().OnCacheSet(ctx, "import", len(data))
		}
	}
	return g, contentHash, false, nil
}

// Import is a convenience wrapper that discards the cache hit info.
func (r *Runner) Import(ctx context.Context, opts Options) (curriculum.Graph, error) {
	g, _, _, err := r.ImportWithCacheInfo(ctx, opts)
	return g, err
}

// buildEnvelope is the cache representation of a build result.
type buildEnvelope struct {
	Graph        curriculum.Graph `json:"graph"`
	Counts       transform.Counts `json:"counts"`
	DroppedEdges int              `json:"dropped_edges"`
}

// BuildWithCacheInfo runs the build stage with caching, keyed on the input
// content hash and the build options.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, g curriculum.Graph, contentHash string, opts Options) (BuildOutput, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return BuildOutput{}, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.BuildKey(contentHash, opts.BuildKeyOpts())
	if !opts.Refresh && contentHash != "" {
		var env buildEnvelope
		if err := cache.GetJSON(ctx, r.Cache, cacheKey, &env); err == nil {
			observability.Cache().OnCacheHit(ctx, "build")
			return BuildOutput{
				Graph:        env.Graph,
				Counts:       env.Counts,
				DroppedEdges: env.DroppedEdges,
			}, true, nil
		} else if stderrors.Is(err, cache.ErrCacheMiss) {
			observability.Cache().OnCacheMiss(ctx, "build")
		}
	}

	out, err := Build(g, opts)
	if err != nil {
		return BuildOutput{}, false, err
	}

	if !opts.Refresh && contentHash != "" {
		env := buildEnvelope{Graph: out.Graph, Counts: out.Counts, DroppedEdges: out.DroppedEdges}
		if size, err := cache.SetJSON(ctx, r.Cache, cacheKey, env, cache.TTLBuild); err == nil {
			observability.Cache().OnCacheSet(ctx, "build", size)
		}
	}
	return out, false, nil
}

// persist ensures the schema exists and writes the graph.
func (r *Runner) persist(ctx context.Context, st store.Store, g curriculum.Graph) error {
	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}
	return st.Persist(ctx, g)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
