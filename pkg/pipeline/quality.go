package pipeline

import (
	"context"
	stderrors "errors"

	"github.com/trellis-learn/trellis/pkg/cache"
	trellisio "github.com/trellis-learn/trellis/pkg/io"
	"github.com/trellis-learn/trellis/pkg/observability"
	"github.com/trellis-learn/trellis/pkg/quality"
)

// QualityWithCacheInfo builds the graph (reusing the import and build
// caches) and computes its content quality report. Reports are cached by
// the hash of the built graph, so two documents producing the same graph
// share one cached report.
func (r *Runner) QualityWithCacheInfo(ctx context.Context, opts Options) (quality.Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return quality.Report{}, false, err
	}
	r.applyLogger(&opts)

	g, contentHash, _, err := r.ImportWithCacheInfo(ctx, opts)
	if err != nil {
		return quality.Report{}, false, err
	}
	out, _, err := r.BuildWithCacheInfo(ctx, g, contentHash, opts)
	if err != nil {
		return quality.Report{}, false, err
	}

	graphHash := ""
	if data, err := trellisio.MarshalGraph(out.Graph); err == nil {
		graphHash = cache.Hash(data)
	}

	cacheKey := r.Keyer.QualityKey(graphHash)
	if !opts.Refresh && graphHash != "" {
		var report quality.Report
		if err := cache.GetJSON(ctx, r.Cache, cacheKey, &report); err == nil {
			observability.Cache().OnCacheHit(ctx, "quality")
			return report, true, nil
		} else if stderrors.Is(err, cache.ErrCacheMiss) {
			observability.Cache().OnCacheMiss(ctx, "quality")
		}
	}

	report := quality.Analyze(out.Graph)

	if !opts.Refresh && graphHash != "" {
		if size, err := cache.SetJSON(ctx, r.Cache, cacheKey, report, cache.TTLQuality); err == nil {
			observability.Cache().OnCacheSet(ctx, "quality", size)
		}
	}
	return report, false, nil
}

// Quality is a convenience wrapper that discards the cache hit info.
func (r *Runner) Quality(ctx context.Context, opts Options) (quality.Report, error) {
	report, _, err := r.QualityWithCacheInfo(ctx, opts)
	return report, err
}
