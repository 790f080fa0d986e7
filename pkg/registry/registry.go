// Package registry holds the catalog of tour definitions.
//
// A Registry is immutable once built: hosts that reload tour files build a
// new Registry and hand it to the controller as a whole.
package registry

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/tourguide/pkg/model"
)

var (
	// ErrDuplicateTour is returned when two tours share an id.
	ErrDuplicateTour = errors.New("duplicate tour id")
	// ErrTourNotFound is returned by Lookup for unknown ids.
	ErrTourNotFound = errors.New("tour not found")
)

// Registry is an ordered, read-only set of tours keyed by id.
type Registry struct {
	tours map[string]model.Tour
	order []string
}

// New validates tours and builds a registry preserving their order.
func New(tours ...model.Tour) (*Registry, error) {
	r := &Registry{tours: make(map[string]model.Tour, len(tours))}
	for _, t := range tours {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.tours[t.ID]; dup {
			return nil, fmt.Errorf("tour %q: %w", t.ID, ErrDuplicateTour)
		}
		r.tours[t.ID] = t.Clone()
		r.order = append(r.order, t.ID)
	}
	return r, nil
}

// MustNew is New that panics on invalid input. For static catalogs.
func MustNew(tours ...model.Tour) *Registry {
	r, err := New(tours...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns a copy of the tour with id.
func (r *Registry) Get(id string) (model.Tour, bool) {
	if r == nil {
		return model.Tour{}, false
	}
	t, ok := r.tours[id]
	if !ok {
		return model.Tour{}, false
	}
	return t.Clone(), true
}

// Lookup is Get with an error for unknown ids.
func (r *Registry) Lookup(id string) (model.Tour, error) {
	t, ok := r.Get(id)
	if !ok {
		return model.Tour{}, fmt.Errorf("%q: %w", id, ErrTourNotFound)
	}
	return t, nil
}

// List returns copies of every tour in registration order.
func (r *Registry) List() []model.Tour {
	if r == nil {
		return nil
	}
	out := make([]model.Tour, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tours[id].Clone())
	}
	return out
}

// IDs returns tour ids in registration order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Len returns the number of tours.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
