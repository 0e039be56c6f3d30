package cache

// ScopedKeyer prefixes every generated key, isolating cache entries when
// one backend serves several routers.
//
// Example:
//
//	// Per-router namespaces sharing one redis instance
//	homeKeyer := NewScopedKeyer(NewDefaultKeyer(), "router:192.168.1.1:")
//	cabinKeyer := NewScopedKeyer(NewDefaultKeyer(), "router:10.0.0.1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key. A nil
// inner keyer falls back to the default scheme.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SourceKey generates a prefixed data-source key.
func (k *ScopedKeyer) SourceKey(endpoint, url string) string {
	return k.prefix + k.inner.SourceKey(endpoint, url)
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(hash string) string {
	return k.prefix + k.inner.SnapshotKey(hash)
}

// ExportKey generates a prefixed export-artifact key.
func (k *ScopedKeyer) ExportKey(snapshotHash string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(snapshotHash, opts)
}
