package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with TTL support.
// Implementations: FileCache (local CLI runs), RedisCache (shared
// deployments), NullCache (caching disabled).
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of zero means the
	// entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Clearer is implemented by backends that can drop every stored entry at
// once. Clear returns the number of entries removed.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Cache TTLs per stage. Extractor imports are content-addressed so they can
// live long; built graphs change whenever the transformation rules do, so
// they expire sooner.
const (
	// TTLImport applies to parsed extractor documents keyed by content hash.
	TTLImport = 7 * 24 * time.Hour

	// TTLBuild applies to fully built and validated graphs.
	TTLBuild = 24 * time.Hour

	// TTLQuality applies to quality reports.
	TTLQuality = 24 * time.Hour
)

// BuildKeyOpts carries the build parameters that affect the output graph
// and therefore must be part of the cache key.
type BuildKeyOpts struct {
	Mode       string
	NoImplicit bool
	NoReduce   bool
}

// Keyer generates cache keys for each pipeline stage.
// DefaultKeyer hashes the inputs; ScopedKeyer adds a namespace prefix.
type Keyer interface {
	// ImportKey generates a key for a parsed extractor document,
	// addressed by the hash of the raw input bytes.
	ImportKey(contentHash string) string

	// BuildKey generates a key for a built graph from the import hash
	// and the build options.
	BuildKey(contentHash string, opts BuildKeyOpts) string

	// QualityKey generates a key for a quality report over a built graph.
	QualityKey(graphHash string) string
}

// DefaultKeyer generates unscoped keys. Safe to share: it holds no state.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer without a namespace prefix.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ImportKey generates a key for a parsed extractor document.
func (k *DefaultKeyer) ImportKey(contentHash string) string {
	return hashKey("import", contentHash)
}

// BuildKey generates a key for a built graph.
func (k *DefaultKeyer) BuildKey(contentHash string, opts BuildKeyOpts) string {
	return hashKey("build", contentHash, opts.Mode, opts.NoImplicit, opts.NoReduce)
}

// QualityKey generates a key for a quality report.
func (k *DefaultKeyer) QualityKey(graphHash string) string {
	return hashKey("quality", graphHash)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
