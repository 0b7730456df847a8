package fingerprint

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Memo memoizes Canonicalize. The function is pure, so cached results never go stale; the
// expiration only bounds memory.
type Memo struct {
	canonicalizer *Canonicalizer
	cache         *cache.Cache
}

// NewMemo creates a memoizing canonicalizer backed by an in-process cache.
func NewMemo(c *Canonicalizer, expiration, cleanupInterval time.Duration) *Memo {
	if c == nil {
		c = defaultCanonicalizer
	}
	return &Memo{
		canonicalizer: c,
		cache:         cache.New(expiration, cleanupInterval),
	}
}

// Canonicalize returns the cached fingerprint for rawURL, computing it on a miss.
func (m *Memo) Canonicalize(rawURL string) string {
	if v, ok := m.cache.Get(rawURL); ok {
		if fp, ok := v.(string); ok {
			return fp
		}
	}
	fp := m.canonicalizer.Canonicalize(rawURL)
	m.cache.SetDefault(rawURL, fp)
	return fp
}
