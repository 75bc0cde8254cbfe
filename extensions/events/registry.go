package events

import (
	"errors"
	"sync"
)

// ErrUnknownHandle is returned when dispatching to a handle that was never
// registered or has been unregistered.
var ErrUnknownHandle = errors.New("unknown callback handle")

// Callback receives one event.
type Callback func(Event)

// Handle identifies a registered callback. Handles are plain integers so they
// can cross boundaries that cannot carry Go pointers. Zero is never issued.
type Handle uint32

// Registry maps handles to callbacks.
type Registry struct {
	mu        sync.RWMutex
	next      Handle
	callbacks map[Handle]Callback
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		callbacks: make(map[Handle]Callback),
	}
}

// Register stores cb and returns its handle.
func (r *Registry) Register(cb Callback) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		r.next++
		if r.next == 0 {
			continue
		}
		if _, taken := r.callbacks[r.next]; !taken {
			break
		}
	}

	r.callbacks[r.next] = cb
	return r.next
}

// Unregister removes the callback for h. It reports whether h was registered.
func (r *Registry) Unregister(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.callbacks[h]; !ok {
		return false
	}
	delete(r.callbacks, h)
	return true
}

// Dispatch calls the callback registered for h with ev. The callback runs
// outside the registry lock and may register or unregister handles.
func (r *Registry) Dispatch(h Handle, ev Event) error {
	r.mu.RLock()
	cb, ok := r.callbacks[h]
	r.mu.RUnlock()

	if !ok {
		return ErrUnknownHandle
	}

	cb(ev)
	return nil
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.callbacks)
}
