package cache

// ScopedKeyer wraps a Keyer with a namespace prefix so multiple curricula
// or tenants can share one cache backend without key collisions.
//
//	// Per-curriculum keys on a shared Redis
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "physics-101:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated
// key. A nil inner keyer falls back to the default.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ImportKey generates a prefixed key for a parsed extractor document.
func (k *ScopedKeyer) ImportKey(contentHash string) string {
	return k.prefix + k.inner.ImportKey(contentHash)
}

// BuildKey generates a prefixed key for a built graph.
func (k *ScopedKeyer) BuildKey(contentHash string, opts BuildKeyOpts) string {
	return k.prefix + k.inner.BuildKey(contentHash, opts)
}

// QualityKey generates a prefixed key for a quality report.
func (k *ScopedKeyer) QualityKey(graphHash string) string {
	return k.prefix + k.inner.QualityKey(graphHash)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
