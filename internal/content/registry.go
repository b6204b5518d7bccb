package content

import (
	"fmt"
	"sync"

	"hifz/engine/internal/errs"
)

// Registry is the bidirectional ukey ↔ internal-id map over the current
// content version. It is a long-lived service: built wholesale at startup,
// invalidated and rebuilt wholesale after an accepted content swap, never
// partially updated. Absence is always a hard error — an unknown ukey is
// never mapped to a default id.
type Registry struct {
	mu     sync.RWMutex
	byUkey map[string]int64
	byID   map[int64]string
}

// NewRegistry builds a registry from the store's current node set.
func NewRegistry(s *Store) (*Registry, error) {
	r := &Registry{}
	if err := r.Rebuild(s); err != nil {
		return nil, err
	}
	return r, nil
}

// Rebuild replaces the cache with the store's current node set. Called after
// an accepted content swap.
func (r *Registry) Rebuild(s *Store) error {
	idents, err := s.AllIdentities()
	if err != nil {
		return fmt.Errorf("rebuilding registry: %w", err)
	}

	byID := make(map[int64]string, len(idents))
	for ukey, id := range idents {
		byID[id] = ukey
	}

	r.mu.Lock()
	r.byUkey = idents
	r.byID = byID
	r.mu.Unlock()
	return nil
}

// Resolve maps a stable ukey to the internal id of the current version.
func (r *Registry) Resolve(ukey string) (int64, error) {
	r.mu.RLock()
	id, ok := r.byUkey[ukey]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("ukey %q: %w", ukey, errs.ErrNotFound)
	}
	return id, nil
}

// Reverse maps an internal id back to its stable ukey.
func (r *Registry) Reverse(id int64) (string, error) {
	r.mu.RLock()
	ukey, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("node id %d: %w", id, errs.ErrNotFound)
	}
	return ukey, nil
}

// Len returns the number of nodes in the current version.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUkey)
}
