// Package registry tracks the catalog of model tiers: their capability
// rank and runtime availability. Reads are concurrent; writes are
// serialized behind an RWMutex.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Tier is a snapshot of one registered model tier.
type Tier struct {
	ID        string
	Rank      int
	Available bool
}

type entry struct {
	rank      int
	available bool
	seq       int // registration order; later registrations win rank ties
}

// Registry is the concurrency-safe tier catalog.
type Registry struct {
	mu    sync.RWMutex
	tiers map[string]*entry
	next  int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{tiers: make(map[string]*entry)}
}

// Register adds a tier with the given capability rank, marked available.
// Registering an existing id updates its rank and bumps its registration
// order, so a re-registered revision is preferred over its peers.
func (r *Registry) Register(id string, rank int) error {
	if id == "" {
		return fmt.Errorf("tier id is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.tiers[id] = &entry{rank: rank, available: true, seq: r.next}
	return nil
}

// SetAvailability flips a tier's availability at runtime.
func (r *Registry) SetAvailability(id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tiers[id]
	if !ok {
		return fmt.Errorf("unknown tier %q", id)
	}
	e.available = available
	return nil
}

// IsAvailable reports whether the tier exists and is available.
func (r *Registry) IsAvailable(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tiers[id]
	return ok && e.available
}

// Rank returns the tier's capability rank.
func (r *Registry) Rank(id string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tiers[id]
	if !ok {
		return 0, false
	}
	return e.rank, true
}

// ListAvailable returns available tiers ordered most capable first.
// Tiers of equal rank are ordered by registration recency, so the newer
// revision of an equivalently priced pair is always picked first.
func (r *Registry) ListAvailable() []Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Tier
	seqs := make(map[string]int)
	for id, e := range r.tiers {
		if !e.available {
			continue
		}
		out = append(out, Tier{ID: id, Rank: e.rank, Available: true})
		seqs[id] = e.seq
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank == out[j].Rank {
			return seqs[out[i].ID] > seqs[out[j].ID]
		}
		return out[i].Rank > out[j].Rank
	})
	return out
}

// ListAll returns every registered tier ordered most capable first,
// regardless of availability.
func (r *Registry) ListAll() []Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Tier
	seqs := make(map[string]int)
	for id, e := range r.tiers {
		out = append(out, Tier{ID: id, Rank: e.rank, Available: e.available})
		seqs[id] = e.seq
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank == out[j].Rank {
			return seqs[out[i].ID] > seqs[out[j].ID]
		}
		return out[i].Rank > out[j].Rank
	})
	return out
}

// Cheapest returns the lowest-ranked available tier.
func (r *Registry) Cheapest() (string, bool) {
	avail := r.ListAvailable()
	if len(avail) == 0 {
		return "", false
	}
	return avail[len(avail)-1].ID, true
}

// CheapestAbove returns the lowest-ranked available tier that is not the
// cheapest one, falling back to the cheapest when only one tier remains.
func (r *Registry) CheapestAbove() (string, bool) {
	avail := r.ListAvailable()
	if len(avail) == 0 {
		return "", false
	}
	if len(avail) == 1 {
		return avail[0].ID, true
	}
	return avail[len(avail)-2].ID, true
}

// MaxRank returns the highest rank among available tiers.
func (r *Registry) MaxRank() int {
	avail := r.ListAvailable()
	if len(avail) == 0 {
		return 0
	}
	return avail[0].Rank
}

// BestAtOrBelow returns the highest-ranked available tier whose rank does
// not exceed ceiling, falling back to the cheapest available tier.
func (r *Registry) BestAtOrBelow(ceiling int) (string, bool) {
	avail := r.ListAvailable()
	for _, t := range avail {
		if t.Rank <= ceiling {
			return t.ID, true
		}
	}
	if len(avail) > 0 {
		return avail[len(avail)-1].ID, true
	}
	return "", false
}
