package cache

// ScopedKeyer wraps a Keyer with a prefix, giving a separate key namespace
// per tenant or per deployment sharing one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ForestKey generates a prefixed forest key.
func (k *ScopedKeyer) ForestKey(inputHash string, opts ForestKeyOpts) string {
	return k.prefix + k.inner.ForestKey(inputHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(forestKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(forestKey, opts)
}
