// Package tour drives guided product tours.
//
// A Controller owns the single process-wide tour state: which tour is
// running, which step is showing, the display name and the completed-tour
// set. It keeps the host router on the step's route (pkg/navigation),
// highlights the step's target (pkg/highlight) and persists progress
// (pkg/store). Every public method either succeeds or is a logged no-op;
// nothing is returned to the caller as an error.
//
// The controller is Idle or Active. Completing or skipping a tour returns it
// to Idle. A start that first has to change route is pending until the
// navigation settles and is never observable as Active on the wrong page.
package tour

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vanderheijden86/tourguide/pkg/highlight"
	"github.com/vanderheijden86/tourguide/pkg/metrics"
	"github.com/vanderheijden86/tourguide/pkg/model"
	"github.com/vanderheijden86/tourguide/pkg/navigation"
	"github.com/vanderheijden86/tourguide/pkg/registry"
	"github.com/vanderheijden86/tourguide/pkg/scheduler"
	"github.com/vanderheijden86/tourguide/pkg/store"
)

// Catalog is the read side of a tour registry.
type Catalog interface {
	Get(id string) (model.Tour, bool)
	List() []model.Tour
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	sched       scheduler.Scheduler
	settle      time.Duration
	scrollDelay time.Duration
	log         *zap.Logger
	metrics     *metrics.Recorder
}

// WithScheduler sets the timer source. Defaults to wall-clock timers.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(o *options) { o.sched = s }
}

// WithSettleWindow overrides navigation.DefaultSettleWindow.
func WithSettleWindow(d time.Duration) Option {
	return func(o *options) { o.settle = d }
}

// WithScrollDelay overrides highlight.DefaultScrollDelay.
func WithScrollDelay(d time.Duration) Option {
	return func(o *options) { o.scrollDelay = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// Controller is the tour state machine. It is safe for concurrent use;
// timer callbacks and UI calls are serialized on one mutex.
type Controller struct {
	store   store.Store
	sched   scheduler.Scheduler
	nav     *navigation.Synchronizer
	hl      *highlight.Manager
	log     *zap.Logger
	metrics *metrics.Recorder

	mu            sync.Mutex
	catalog       Catalog
	tour          *model.Tour
	index         int
	pending       *model.Tour
	userName      string
	completed     map[string]bool
	transitioning bool
	epoch         uint64
	closed        bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// NewController builds a controller and rehydrates progress from st.
// router and port may be nil when the host has no routes or no DOM.
func NewController(catalog Catalog, st store.Store, router navigation.Router, port highlight.Port, opts ...Option) *Controller {
	o := options{
		settle:      navigation.DefaultSettleWindow,
		scrollDelay: highlight.DefaultScrollDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sched == nil {
		o.sched = scheduler.NewReal()
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if st == nil {
		st = store.NewMemoryStore()
	}

	log := o.log.Named("tour").With(zap.String("session", uuid.NewString()))
	c := &Controller{
		store:     st,
		sched:     o.sched,
		log:       log,
		metrics:   o.metrics,
		catalog:   catalog,
		completed: make(map[string]bool),
		subs:      make(map[int]func(State)),
	}
	c.nav = navigation.New(router, o.sched,
		navigation.WithSettleWindow(o.settle),
		navigation.WithLogger(log.Named("nav")),
		navigation.WithMetrics(o.metrics),
		navigation.WithOnSettled(c.onNavigationSettled),
	)
	c.hl = highlight.NewManager(port, o.sched,
		highlight.WithScrollDelay(o.scrollDelay),
		highlight.WithLogger(log.Named("highlight")),
		highlight.WithMetrics(o.metrics),
	)

	p := st.Load()
	for _, id := range p.CompletedTours {
		c.completed[id] = true
	}
	c.userName = p.UserName
	log.Debug("controller ready", zap.Int("completed", len(c.completed)), zap.Bool("named", c.userName != ""))
	return c
}

// SetRegistry swaps the tour catalog. A running tour keeps its own copy.
func (c *Controller) SetRegistry(catalog Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = catalog
}

// StartTour starts the tour with id. Unknown ids are logged and ignored.
// When the tour's start route differs from the current route, the controller
// navigates first and activates the tour after the settle window.
func (c *Controller) StartTour(id string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	var t model.Tour
	ok := false
	if c.catalog != nil {
		t, ok = c.catalog.Get(id)
	}
	if !ok {
		c.log.Warn("start: ignored", zap.String("tour", id), zap.Error(registry.ErrTourNotFound))
		c.mu.Unlock()
		return
	}
	if c.pending != nil {
		c.log.Warn("start: another start is pending, dropped", zap.String("tour", id), zap.String("pending", c.pending.ID))
		c.mu.Unlock()
		return
	}
	if c.transitioning {
		c.log.Warn("start: transition in flight, dropped", zap.String("tour", id))
		c.mu.Unlock()
		return
	}

	if c.tour != nil {
		c.log.Debug("start: discarding active tour", zap.String("tour", c.tour.ID))
		c.resetLocked()
	}

	target := t.StartPath()
	if target != "" && c.nav.CurrentPath() != target {
		res := c.nav.Sync(target)
		c.pending = &t
		c.log.Info("start: waiting for navigation", zap.String("tour", id), zap.String("path", target), zap.Stringer("nav", res))
	} else {
		c.activateLocked(t)
	}
	c.unlockAndNotify()
}

// NextStep runs the current step's OnComplete and advances. Leaving the last
// step completes the tour.
func (c *Controller) NextStep() {
	defer c.metrics.Timer()()
	c.mu.Lock()
	if !c.leaveStepLocked("next") {
		c.mu.Unlock()
		return
	}
	if c.index+1 >= len(c.tour.Steps) {
		c.completeLocked()
	} else {
		c.index++
		c.applyStepLocked()
	}
	c.unlockAndNotify()
}

// EndTour runs the current step's OnComplete and marks the tour completed.
// While a start is pending it only cancels that start.
func (c *Controller) EndTour() {
	c.mu.Lock()
	if c.tour == nil && c.pending != nil {
		c.log.Info("end: canceling pending start", zap.String("tour", c.pending.ID))
		c.resetLocked()
		c.unlockAndNotify()
		return
	}
	if !c.leaveStepLocked("end") {
		c.mu.Unlock()
		return
	}
	c.completeLocked()
	c.unlockAndNotify()
}

// leaveStepLocked guards a forward transition and runs OnComplete outside the
// lock. It returns false when the transition must not proceed; the lock is
// held on return either way.
func (c *Controller) leaveStepLocked(op string) bool {
	if c.tour == nil {
		c.log.Debug(op+": no active tour")
		return false
	}
	if c.transitioning {
		c.log.Warn(op+": transition in flight, dropped", zap.String("tour", c.tour.ID))
		return false
	}

	step := c.tour.Steps[c.index]
	if step.OnComplete == nil {
		return true
	}

	epoch := c.epoch
	c.transitioning = true
	c.mu.Unlock()
	c.runOnComplete(step)
	c.mu.Lock()
	c.transitioning = false

	if c.epoch != epoch || c.tour == nil {
		c.log.Debug(op+": tour changed during step completion, abandoned", zap.String("step", step.ID))
		return false
	}
	return true
}

func (c *Controller) runOnComplete(step model.Step) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("step completion hook panicked", zap.String("step", step.ID), zap.Any("panic", r))
		}
	}()
	step.OnComplete()
}

// PrevStep moves back one step. It does not run OnComplete.
func (c *Controller) PrevStep() {
	defer c.metrics.Timer()()
	c.mu.Lock()
	if c.tour == nil || c.index == 0 {
		c.mu.Unlock()
		return
	}
	if c.transitioning {
		c.log.Warn("prev: transition in flight, dropped", zap.String("tour", c.tour.ID))
		c.mu.Unlock()
		return
	}
	c.index--
	c.applyStepLocked()
	c.unlockAndNotify()
}

// GoToStep jumps to step index. Out-of-range indexes are logged and ignored.
func (c *Controller) GoToStep(index int) {
	defer c.metrics.Timer()()
	c.mu.Lock()
	if c.tour == nil {
		c.log.Debug("goto: no active tour", zap.Int("index", index))
		c.mu.Unlock()
		return
	}
	if _, err := c.tour.StepAt(index); err != nil {
		c.log.Warn("goto: ignored", zap.Int("index", index), zap.Error(err))
		c.mu.Unlock()
		return
	}
	if c.transitioning {
		c.log.Warn("goto: transition in flight, dropped", zap.String("tour", c.tour.ID))
		c.mu.Unlock()
		return
	}
	c.index = index
	c.applyStepLocked()
	c.unlockAndNotify()
}

// RestartTour returns the active tour to its first step.
func (c *Controller) RestartTour() {
	if !c.IsTourActive() {
		c.log.Debug("restart: no active tour")
		return
	}
	c.GoToStep(0)
}

// SkipTour abandons the active or pending tour without marking it completed.
func (c *Controller) SkipTour() {
	c.mu.Lock()
	switch {
	case c.tour != nil:
		c.metrics.TourSkipped(c.tour.ID)
		c.log.Info("tour skipped", zap.String("tour", c.tour.ID), zap.Int("index", c.index))
	case c.pending != nil:
		c.log.Info("pending start skipped", zap.String("tour", c.pending.ID))
	default:
		c.mu.Unlock()
		return
	}
	c.resetLocked()
	c.unlockAndNotify()
}

// SetUserName stores the display name used for {userName}.
func (c *Controller) SetUserName(name string) {
	c.mu.Lock()
	c.userName = name
	if err := c.store.SaveUserName(name); err != nil {
		c.log.Warn("persisting user name", zap.Error(err))
	}
	c.unlockAndNotify()
}

// ResetProgress forgets every completed tour.
func (c *Controller) ResetProgress() {
	c.mu.Lock()
	c.completed = make(map[string]bool)
	c.persistCompletedLocked()
	c.unlockAndNotify()
}

// Close tears the controller down: markers are removed, timers canceled and
// subscribers dropped. Later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.resetLocked()
	c.closed = true
	c.mu.Unlock()

	c.subMu.Lock()
	c.subs = make(map[int]func(State))
	c.subMu.Unlock()
}

// activateLocked enters Active at step 0 and applies it.
func (c *Controller) activateLocked(t model.Tour) {
	c.enterLocked(t)
	c.applyStepLocked()
}

func (c *Controller) enterLocked(t model.Tour) {
	c.tour = &t
	c.index = 0
	c.pending = nil
	c.epoch++
	c.metrics.TourStarted(t.ID)
	c.log.Info("tour started", zap.String("tour", t.ID), zap.Int("steps", len(t.Steps)))
}

// applyStepLocked runs the side effects of showing the current step. When a
// route change is in flight the highlight waits for it to settle.
func (c *Controller) applyStepLocked() {
	step := c.tour.Steps[c.index]
	switch c.nav.Sync(step.Path) {
	case navigation.InPlace:
		c.hl.Show(step)
	default:
		c.hl.Clear()
	}
}

// completeLocked marks the active tour completed and returns to Idle.
func (c *Controller) completeLocked() {
	id := c.tour.ID
	if !c.completed[id] {
		c.completed[id] = true
		c.persistCompletedLocked()
	}
	c.metrics.TourCompleted(id)
	c.log.Info("tour completed", zap.String("tour", id))
	c.resetLocked()
}

// resetLocked drops the active and pending tour and every side effect they
// own, synchronously.
func (c *Controller) resetLocked() {
	c.tour = nil
	c.pending = nil
	c.index = 0
	c.epoch++
	c.hl.Clear()
	c.nav.Cancel()
}

func (c *Controller) persistCompletedLocked() {
	if err := c.store.SaveCompleted(c.completedIDsLocked()); err != nil {
		c.log.Warn("persisting completed tours", zap.Error(err))
	}
}

// onNavigationSettled runs when a settle window closes: a pending start is
// activated, otherwise the current step is re-synced and re-highlighted.
func (c *Controller) onNavigationSettled() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	switch {
	case c.pending != nil:
		c.enterLocked(*c.pending)
		c.settleStepLocked()
	case c.tour != nil:
		c.settleStepLocked()
	default:
		c.mu.Unlock()
		return
	}
	c.unlockAndNotify()
}

// settleStepLocked re-applies the current step once the route has settled.
// A step whose route was the one just navigated to is shown where it is.
func (c *Controller) settleStepLocked() {
	step := c.tour.Steps[c.index]
	res := navigation.InPlace
	if step.Path != "" && step.Path != c.nav.CurrentPath() && !c.navigatedTo(step.Path) {
		res = c.nav.Sync(step.Path)
	}
	if res == navigation.InPlace {
		c.hl.Show(step)
	} else {
		c.hl.Clear()
	}
}

// navigatedTo reports whether the settled navigation was already for path.
// A route that did not change after its own navigation is not retried.
func (c *Controller) navigatedTo(path string) bool {
	return c.nav.LastPath() == path
}

// unlockAndNotify snapshots state, releases the lock and publishes.
func (c *Controller) unlockAndNotify() {
	s := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s)
}
