// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package joinflow

import (
	"sync"
	"time"
)

// Factory builds the orchestrator for a browser session.
type Factory func(clientID, sessionID string) *Orchestrator

type entry struct {
	o        *Orchestrator
	lastUsed time.Time
}

// Registry keeps one Orchestrator per browser session.
type Registry struct {
	newFn Factory
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(newFn Factory) *Registry {
	return &Registry{
		newFn:    newFn,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the session's orchestrator, creating it on first use.
func (r *Registry) Get(clientID, sessionID string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionID]
	if !ok {
		e = &entry{o: r.newFn(clientID, sessionID)}
		r.sessions[sessionID] = e
	}
	e.lastUsed = r.now()
	return e.o
}

// Len reports how many sessions are tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Prune drops idle orchestrators unused for maxIdle. Busy ones are kept.
// The pending slot lives in the store, so nothing is lost.
func (r *Registry) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	n := 0
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) && !e.o.Busy() {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Wait blocks until every background join has finished.
func (r *Registry) Wait() {
	r.mu.Lock()
	all := make([]*Orchestrator, 0, len(r.sessions))
	for _, e := range r.sessions {
		all = append(all, e.o)
	}
	r.mu.Unlock()

	for _, o := range all {
		o.Wait()
	}
}
