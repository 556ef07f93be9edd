package loader

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"pscss/preprocess"
)

// Cached keeps recently loaded resources in memory. It caches content only,
// the decision whether resource has to be loaded at all belongs to the
// converter loaded set. Failures are not cached. Cached is safe for
// concurrent use when the wrapped loader is.
type Cached struct {
	log    *zap.Logger
	next   preprocess.Loader
	cache  *lru.Cache[string, string]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps loader with LRU cache of given size. Non-positive size
// returns loader unchanged.
func NewCached(log *zap.Logger, next preprocess.Loader, size int) (preprocess.Loader, error) {
	if size <= 0 {
		return next, nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cached{log: log.Named("cache"), next: next, cache: cache}, nil
}

func (l *Cached) Load(path string) (string, error) {
	if text, ok := l.cache.Get(path); ok {
		l.hits.Add(1)
		l.log.Debug("Cache hit", zap.String("path", path))
		return text, nil
	}
	l.misses.Add(1)
	text, err := l.next.Load(path)
	if err != nil {
		return "", err
	}
	l.cache.Add(path, text)
	return text, nil
}

// Stats returns number of cache hits and misses.
func (l *Cached) Stats() (hits, misses int64) {
	return l.hits.Load(), l.misses.Load()
}
