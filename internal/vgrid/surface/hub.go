// internal/vgrid/surface/hub.go
package surface

import "sync"

// Hub fans one event type out to any number of listeners. Hosts embed one per
// event kind to implement the Surface On* methods.
type Hub[E any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]func(E)
	order     []uint64
}

// Subscribe registers fn and returns its detach func.
func (h *Hub[E]) Subscribe(fn func(E)) Unsubscribe {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[uint64]func(E))
	}
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners, id)
			for i, v := range h.order {
				if v == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit calls every listener registered at the time of the call, in
// subscription order, outside the lock.
func (h *Hub[E]) Emit(e E) {
	h.mu.Lock()
	fns := make([]func(E), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.listeners[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Len is the number of attached listeners.
func (h *Hub[E]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}
