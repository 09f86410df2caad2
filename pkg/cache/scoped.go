package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several tenants or
// environments can share one Redis database.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(manifestHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(manifestHash, opts)
}

func (k *ScopedKeyer) JumpKey(manifestHash string, opts JumpKeyOpts) string {
	return k.prefix + k.inner.JumpKey(manifestHash, opts)
}
