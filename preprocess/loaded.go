package preprocess

import (
	"errors"
	"path"
	"strings"
	"sync"
)

// ErrNoLoader is returned when resource has to be fetched but converter was
// created without a loader.
var ErrNoLoader = errors.New("no resource loader configured")

// Loader fetches resource text by path. Paths are produced by import
// resolution: either relative file paths or absolute URLs.
type Loader interface {
	Load(path string) (string, error)
}

// LoaderFunc adapts ordinary function to Loader.
type LoaderFunc func(path string) (string, error)

func (f LoaderFunc) Load(path string) (string, error) {
	return f(path)
}

// LoadedSet remembers resources which were already loaded. It prevents
// duplicate loads and circular imports and is safe for concurrent use.
type LoadedSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewLoadedSet() *LoadedSet {
	return &LoadedSet{ids: make(map[string]struct{})}
}

// Claim marks id as loaded. It returns false if id has been claimed before.
func (s *LoadedSet) Claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[id]; exists {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Release forgets id, resource which failed to load may be loaded again.
func (s *LoadedSet) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ids, id)
}

// Has reports whether id has been claimed.
func (s *LoadedSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.ids[id]
	return exists
}

// Len returns number of claimed resources.
func (s *LoadedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}

// resourceID produces canonical identifier for a resource path. URLs are
// kept as is, file paths are cleaned.
func resourceID(p string) string {
	if strings.Contains(p, "://") {
		return p
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
