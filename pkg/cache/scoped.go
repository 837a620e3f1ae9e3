package cache

// ScopedKeyer prefixes every key of an inner Keyer. Servers sharing one Redis
// use it to keep their entries apart:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "spotfinder:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SceneKey returns the prefixed scene key.
func (k *ScopedKeyer) SceneKey(sceneHash string) string {
	return k.prefix + k.inner.SceneKey(sceneHash)
}

// PlacementKey returns the prefixed placement key.
func (k *ScopedKeyer) PlacementKey(sceneHash string, opts PlacementKeyOpts) string {
	return k.prefix + k.inner.PlacementKey(sceneHash, opts)
}
