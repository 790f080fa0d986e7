// Package highlight marks the element a tour step points at.
//
// The Manager owns the marker vocabulary (generic marker, size variant,
// category variant) and the scroll delay; a Port does the actual DOM work.
// Ports exist for a real browser (pkg/browser) and for an in-memory DOM
// (MemoryDOM) used by the terminal playground and tests.
package highlight

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vanderheijden86/tourguide/pkg/metrics"
	"github.com/vanderheijden86/tourguide/pkg/model"
	"github.com/vanderheijden86/tourguide/pkg/scheduler"
)

// Marker class names.
const (
	Marker        = "tour-highlight"
	variantPrefix = Marker + "-"
)

// DefaultScrollDelay lets layout settle after a navigation before scrolling.
const DefaultScrollDelay = 300 * time.Millisecond

// Categories are matched case-insensitively against step ids, in this order.
// The first match wins.
var Categories = []string{
	"finance",
	"career",
	"wellness",
	"relationship",
	"communication",
	"cooking",
	"housing",
	"education",
}

// Port applies and removes markers on DOM elements.
type Port interface {
	// Apply adds classes to the first element matching selector. It reports
	// whether an element matched; no match is not an error.
	Apply(selector string, classes ...string) (bool, error)
	// ClearAll removes classes from every element carrying any of them.
	ClearAll(classes ...string) error
	// ScrollIntoView centers the first element matching selector.
	ScrollIntoView(selector string) error
}

// SizeMarker returns the size variant class, defaulting to md.
func SizeMarker(size model.HighlightSize) string {
	return variantPrefix + string(size.OrDefault())
}

// CategoryMarker returns the category variant class for a step id, or "" when
// no category token appears in it.
func CategoryMarker(stepID string) string {
	id := strings.ToLower(stepID)
	for _, c := range Categories {
		if strings.Contains(id, c) {
			return variantPrefix + c
		}
	}
	return ""
}

// AllMarkers lists every class the manager may apply.
func AllMarkers() []string {
	out := []string{Marker,
		SizeMarker(model.HighlightSmall),
		SizeMarker(model.HighlightMedium),
		SizeMarker(model.HighlightLarge),
	}
	for _, c := range Categories {
		out = append(out, variantPrefix+c)
	}
	return out
}

// MarkersFor returns the classes applied for a step.
func MarkersFor(step model.Step) []string {
	classes := []string{Marker, SizeMarker(step.HighlightSize)}
	if c := CategoryMarker(step.ID); c != "" {
		classes = append(classes, c)
	}
	return classes
}

// Option configures a Manager.
type Option func(*Manager)

// WithScrollDelay overrides DefaultScrollDelay.
func WithScrollDelay(d time.Duration) Option {
	return func(m *Manager) { m.scrollDelay = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Manager) { m.metrics = r }
}

// Manager applies step highlights through a Port.
type Manager struct {
	port        Port
	sched       scheduler.Scheduler
	scrollDelay time.Duration
	log         *zap.Logger
	metrics     *metrics.Recorder

	mu     sync.Mutex
	scroll scheduler.Token
	gen    uint64
	target string
}

// NewManager creates a manager. A nil port disables DOM work entirely.
func NewManager(port Port, sched scheduler.Scheduler, opts ...Option) *Manager {
	m := &Manager{
		port:        port,
		sched:       sched,
		scrollDelay: DefaultScrollDelay,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Show clears every existing marker, then highlights the step's target and
// schedules a scroll to it. It reports whether a target was highlighted.
func (m *Manager) Show(step model.Step) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearLocked()
	if m.port == nil || step.TargetSelector == "" {
		return false
	}

	found, err := m.port.Apply(step.TargetSelector, MarkersFor(step)...)
	if err != nil {
		m.log.Warn("applying highlight", zap.String("selector", step.TargetSelector), zap.Error(err))
		return false
	}
	if !found {
		m.metrics.Highlight(metrics.OutcomeMissing)
		m.log.Debug("highlight target not found", zap.String("step", step.ID), zap.String("selector", step.TargetSelector))
		return false
	}
	m.metrics.Highlight(metrics.OutcomeFound)
	m.target = step.TargetSelector

	selector := step.TargetSelector
	gen := m.gen
	m.scroll = m.sched.Schedule(m.scrollDelay, func() { m.scrollTo(gen, selector) })
	return true
}

// scrollTo runs the delayed scroll unless a later Show or Clear replaced it.
func (m *Manager) scrollTo(gen uint64, selector string) {
	m.mu.Lock()
	current := m.gen == gen && m.scroll != nil
	if current {
		m.scroll = nil
	}
	m.mu.Unlock()
	if !current {
		return
	}
	if err := m.port.ScrollIntoView(selector); err != nil {
		m.log.Debug("scrolling to highlight", zap.String("selector", selector), zap.Error(err))
	}
}

// Clear removes every marker immediately and cancels a pending scroll.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *Manager) clearLocked() {
	m.gen++
	if m.scroll != nil {
		m.scroll.Cancel()
		m.scroll = nil
	}
	m.target = ""
	if m.port == nil {
		return
	}
	if err := m.port.ClearAll(AllMarkers()...); err != nil {
		m.log.Warn("clearing highlights", zap.Error(err))
	}
}

// Target returns the selector currently highlighted, or "".
func (m *Manager) Target() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// ScrollPending reports whether a delayed scroll is waiting to run.
func (m *Manager) ScrollPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scroll != nil
}
