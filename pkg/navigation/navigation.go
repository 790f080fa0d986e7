// Package navigation keeps the host router on the route the active tour step
// asks for.
//
// Navigation is fire-and-forget: the router gives no confirmation, so after
// issuing a route change the Synchronizer waits a fixed settle window before
// it will issue another one. Requests that arrive inside the window are
// dropped, not queued; the owner is told when the window closes and can
// re-sync against whatever step is current by then.
package navigation

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vanderheijden86/tourguide/pkg/metrics"
	"github.com/vanderheijden86/tourguide/pkg/scheduler"
)

// DefaultSettleWindow is how long a navigation is considered in flight.
const DefaultSettleWindow = 500 * time.Millisecond

// Router is the host application's router.
type Router interface {
	CurrentPath() string
	// Navigate requests a route change. It must not call back into the
	// Synchronizer.
	Navigate(path string)
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithSettleWindow overrides DefaultSettleWindow.
func WithSettleWindow(d time.Duration) Option {
	return func(s *Synchronizer) { s.settle = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Synchronizer) { s.metrics = r }
}

// WithOnSettled registers a callback run (outside the Synchronizer's lock)
// each time a settle window closes.
func WithOnSettled(fn func()) Option {
	return func(s *Synchronizer) { s.onSettled = fn }
}

// Synchronizer issues at most one navigation per settle window.
type Synchronizer struct {
	router    Router
	sched     scheduler.Scheduler
	settle    time.Duration
	log       *zap.Logger
	metrics   *metrics.Recorder
	onSettled func()

	mu         sync.Mutex
	navigating bool
	timer      scheduler.Token
	gen        uint64
	last       string
}

// New creates a Synchronizer for router.
func New(router Router, sched scheduler.Scheduler, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		router: router,
		sched:  sched,
		settle: DefaultSettleWindow,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOnSettled replaces the settle callback.
func (s *Synchronizer) SetOnSettled(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSettled = fn
}

// Result describes what Sync did.
type Result int

const (
	// InPlace means no navigation was needed: no path, or already there.
	InPlace Result = iota
	// Issued means a navigation was sent and the settle window started.
	Issued
	// Suppressed means a navigation was needed but one is already in flight.
	Suppressed
)

func (r Result) String() string {
	switch r {
	case Issued:
		return "issued"
	case Suppressed:
		return "suppressed"
	default:
		return "in-place"
	}
}

// Sync navigates to path when it is set, differs from the current route and
// no navigation is in flight.
func (s *Synchronizer) Sync(path string) Result {
	if path == "" || s.router == nil {
		return InPlace
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.navigating {
		if path != s.last {
			s.metrics.Navigation(metrics.OutcomeSuppressed)
			s.log.Debug("navigation suppressed", zap.String("path", path), zap.String("inflight", s.last))
		}
		return Suppressed
	}
	if s.router.CurrentPath() == path {
		return InPlace
	}

	s.navigating = true
	s.last = path
	s.gen++
	gen := s.gen
	s.log.Debug("navigating", zap.String("path", path))
	s.metrics.Navigation(metrics.OutcomeIssued)
	s.router.Navigate(path)
	s.timer = s.sched.Schedule(s.settle, func() { s.settled(gen) })
	return Issued
}

func (s *Synchronizer) settled(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.navigating {
		s.mu.Unlock()
		return
	}
	s.navigating = false
	s.timer = nil
	cb := s.onSettled
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Navigating reports whether a navigation is inside its settle window.
func (s *Synchronizer) Navigating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigating
}

// Cancel forgets the in-flight navigation: the pending settle callback will
// not run and the next Sync may navigate immediately. The route change
// itself cannot be recalled.
func (s *Synchronizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
	s.gen++
	s.navigating = false
}

// CurrentPath returns the router's current route.
func (s *Synchronizer) CurrentPath() string {
	if s.router == nil {
		return ""
	}
	return s.router.CurrentPath()
}

// LastPath returns the path of the most recent navigation this Synchronizer
// issued, or "" if it has issued none.
func (s *Synchronizer) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
