package navigation

import "sync"

// MemoryRouter is a Router that changes route instantly and records every
// navigation. The terminal playground and tests use it.
type MemoryRouter struct {
	mu       sync.Mutex
	path     string
	history  []string
	onChange func(path string)
}

// NewMemoryRouter returns a router sitting at path.
func NewMemoryRouter(path string) *MemoryRouter {
	return &MemoryRouter{path: path}
}

// OnChange registers a callback run after every Navigate, outside the lock.
func (r *MemoryRouter) OnChange(fn func(path string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// CurrentPath implements Router.
func (r *MemoryRouter) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Navigate implements Router.
func (r *MemoryRouter) Navigate(path string) {
	r.mu.Lock()
	r.path = path
	r.history = append(r.history, path)
	cb := r.onChange
	r.mu.Unlock()
	if cb != nil {
		cb(path)
	}
}

// Visit moves to path without recording it as a tour navigation, as when the
// user follows a link.
func (r *MemoryRouter) Visit(path string) {
	r.mu.Lock()
	r.path = path
	cb := r.onChange
	r.mu.Unlock()
	if cb != nil {
		cb(path)
	}
}

// History returns every path passed to Navigate.
func (r *MemoryRouter) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
