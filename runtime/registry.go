package runtime

import (
	"context"
	"sync"
)

// Registry tracks the live views each user has open so they can all be
// closed together, typically on sign-out.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	views  map[string]map[uint64]context.CancelFunc // map user -> live views
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]map[uint64]context.CancelFunc)}
}

// Track registers cancel as a live view of userID.
// The returned release must be called when the view ends on its own; it is idempotent.
func (r *Registry) Track(userID string, cancel context.CancelFunc) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	if _, ok := r.views[userID]; !ok {
		r.views[userID] = make(map[uint64]context.CancelFunc)
	}
	r.views[userID][id] = cancel

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.remove(userID, id)
	}
}

// UnsubscribeAll cancels every live view of userID and returns how many were open.
func (r *Registry) UnsubscribeAll(userID string) int {
	r.mu.Lock()
	views := r.views[userID]
	delete(r.views, userID)
	r.mu.Unlock()

	for _, cancel := range views {
		cancel()
	}
	return len(views)
}

func (r *Registry) Count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views[userID])
}

// remove drops one view and the user entry once empty, so the map does not grow forever.
func (r *Registry) remove(userID string, id uint64) {
	views, ok := r.views[userID]
	if !ok {
		return
	}
	delete(views, id)
	if len(views) == 0 {
		delete(r.views, userID)
	}
}
