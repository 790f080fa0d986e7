package tour

import (
	"sort"

	"github.com/vanderheijden86/tourguide/pkg/model"
)

// State is an immutable snapshot of the controller, as seen by a UI.
type State struct {
	Active        bool
	TourID        string
	TourTitle     string
	StepIndex     int
	TotalSteps    int
	Step          *model.Step // resolved; nil when idle
	Pending       string      // tour waiting for its start route, or ""
	Navigating    bool
	UserName      string
	Completed     []string
	Transitioning bool
}

// IsFirst reports whether the current step is the first one.
func (s State) IsFirst() bool { return s.Active && s.StepIndex == 0 }

// IsLast reports whether the current step is the last one.
func (s State) IsLast() bool { return s.Active && s.StepIndex == s.TotalSteps-1 }

func (c *Controller) snapshotLocked() State {
	s := State{
		UserName:      c.userName,
		Completed:     c.completedIDsLocked(),
		Navigating:    c.nav.Navigating(),
		Transitioning: c.transitioning,
	}
	if c.pending != nil {
		s.Pending = c.pending.ID
	}
	if c.tour != nil {
		step := ResolveStep(c.tour.Steps[c.index], c.userName)
		s.Active = true
		s.TourID = c.tour.ID
		s.TourTitle = c.tour.Title
		s.StepIndex = c.index
		s.TotalSteps = len(c.tour.Steps)
		s.Step = &step
	}
	return s
}

func (c *Controller) completedIDsLocked() []string {
	ids := make([]string, 0, len(c.completed))
	for id := range c.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Subscribe registers fn to receive a snapshot after every observable change.
// fn runs on the goroutine that caused the change, never under the
// controller's lock, and may call back into the controller.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) publish(s State) {
	c.subMu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// IsTourActive reports whether a tour is showing a step.
func (c *Controller) IsTourActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tour != nil
}

// CurrentStepIndex is the zero-based step index, or 0 when idle.
func (c *Controller) CurrentStepIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// TotalSteps is the active tour's step count, or 0 when idle.
func (c *Controller) TotalSteps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tour == nil {
		return 0
	}
	return len(c.tour.Steps)
}

// CurrentStep returns the current step with {userName} resolved, or nil.
func (c *Controller) CurrentStep() *model.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tour == nil {
		return nil
	}
	step := ResolveStep(c.tour.Steps[c.index], c.userName)
	return &step
}

// ActiveTourID returns the running tour's id, or "".
func (c *Controller) ActiveTourID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tour == nil {
		return ""
	}
	return c.tour.ID
}

// UserName returns the stored display name, possibly empty.
func (c *Controller) UserName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userName
}

// CompletedTours returns completed tour ids, sorted.
func (c *Controller) CompletedTours() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completedIDsLocked()
}

// IsTourCompleted reports whether id has been completed.
func (c *Controller) IsTourCompleted(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed[id]
}

// IsNavigating reports whether a route change is inside its settle window.
func (c *Controller) IsNavigating() bool {
	return c.nav.Navigating()
}

// Listing is a catalog entry with its completion flag.
type Listing struct {
	model.Tour
	Completed bool
}

// Tours lists the catalog in registration order.
func (c *Controller) Tours() []Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog == nil {
		return nil
	}
	tours := c.catalog.List()
	out := make([]Listing, 0, len(tours))
	for _, t := range tours {
		out = append(out, Listing{Tour: t, Completed: c.completed[t.ID]})
	}
	return out
}
