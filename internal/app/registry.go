package app

import (
	"context"
	"sync"
	"time"
)

type registryEntry struct {
	tracker  *Tracker
	lastSeen time.Time
}

// Registry keeps one Tracker per client session.
type Registry struct {
	mu       sync.Mutex
	trackers map[string]*registryEntry
	build    func(key string) *Tracker
	now      func() time.Time
}

// NewRegistry returns a registry that creates trackers with build.
func NewRegistry(build func(key string) *Tracker) *Registry {
	return &Registry{
		trackers: make(map[string]*registryEntry),
		build:    build,
		now:      time.Now,
	}
}

// Get returns the tracker for key, creating it on first use, and marks it
// as seen.
func (r *Registry) Get(key string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.trackers[key]
	if !ok {
		e = &registryEntry{tracker: r.build(key)}
		r.trackers[key] = e
	}
	e.lastSeen = r.now()
	return e.tracker
}

// Drop forgets the tracker for key.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, key)
}

// Prune forgets trackers that have not been used for maxIdle and returns how
// many were removed.
func (r *Registry) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for key, e := range r.trackers {
		if e.lastSeen.Before(cutoff) {
			delete(r.trackers, key)
			n++
		}
	}
	return n
}

// Len returns the number of live trackers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

// SessionTrackers returns a builder for NewRegistry. Each tracker signs out
// by deleting the stored session its key names.
func SessionTrackers(deps TrackerDeps, auth *AuthService) func(key string) *Tracker {
	return func(key string) *Tracker {
		d := deps
		d.SignOut = func(ctx context.Context) error {
			return auth.Logout(ctx, key)
		}
		return NewTracker(d)
	}
}
