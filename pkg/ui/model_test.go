package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/tourguide/pkg/highlight"
	"github.com/vanderheijden86/tourguide/pkg/navigation"
	"github.com/vanderheijden86/tourguide/pkg/registry"
	"github.com/vanderheijden86/tourguide/pkg/scheduler"
	"github.com/vanderheijden86/tourguide/pkg/store"
	"github.com/vanderheijden86/tourguide/pkg/tour"
)

func newTestModel(t *testing.T) (Model, *Site, *scheduler.Manual) {
	t.Helper()
	site := NewSite("/")
	sched := scheduler.NewManual()
	ctrl := tour.NewController(registry.Builtin(), store.NewMemoryStore(), site.Router, site.DOM,
		tour.WithScheduler(sched),
	)
	t.Cleanup(ctrl.Close)
	m := NewModel(ctrl, site, TestTheme())
	t.Cleanup(m.Close)
	return m, site, sched
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func marked(dom *highlight.MemoryDOM, selector string) bool {
	for _, c := range dom.Classes(selector) {
		if c == highlight.Marker {
			return true
		}
	}
	return false
}

func TestModel_WelcomeTourEndToEnd(t *testing.T) {
	m, site, sched := newTestModel(t)

	m = press(m, runes("1"))
	if s := m.State(); !s.Active || s.TourID != "welcome" || s.StepIndex != 0 {
		t.Fatalf("after start: %+v", s)
	}
	if !strings.Contains(m.View(), "Welcome, there!") {
		t.Error("dialog should greet with the fallback name")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.State().StepIndex != 1 {
		t.Fatalf("step = %d, want 1", m.State().StepIndex)
	}
	if !marked(site.DOM, "#nav-finance") {
		t.Error("#nav-finance should be highlighted")
	}
	if !strings.Contains(m.View(), "Find your way") {
		t.Error("dialog should show the second step")
	}

	m = press(m, runes("n"))
	if got := site.Router.CurrentPath(); got != "/profile" {
		t.Fatalf("path = %q, want /profile", got)
	}
	sched.Advance(navigation.DefaultSettleWindow)
	m = press(m, stateMsg(m.ctrl.Snapshot()))
	if !marked(site.DOM, "#profile-name") {
		t.Error("#profile-name should be highlighted after settling")
	}
	if strings.Contains(m.View(), "← Back") {
		t.Error("back button is hidden on the profile step")
	}

	m = press(m, runes("n"))
	s := m.State()
	if s.Active {
		t.Fatal("tour should be complete")
	}
	if len(s.Completed) != 1 || s.Completed[0] != "welcome" {
		t.Errorf("completed = %v", s.Completed)
	}
	if len(site.DOM.Marked()) != 0 {
		t.Errorf("markers left after completion: %v", site.DOM.Marked())
	}
	if !strings.Contains(m.View(), "✓") {
		t.Error("tour list should mark the completed tour")
	}
}

func TestModel_StartOutOfRangeIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, runes("9"))
	if m.State().Active || m.State().Pending != "" {
		t.Errorf("unexpected state %+v", m.State())
	}
}

func TestModel_PendingStartShowsWhileNavigating(t *testing.T) {
	m, site, sched := newTestModel(t)

	m = press(m, runes("2")) // finance-basics requires /finance
	if m.State().Pending != "finance-basics" {
		t.Fatalf("pending = %q", m.State().Pending)
	}
	if !strings.Contains(m.View(), "Opening finance-basics") {
		t.Error("view should show the pending start")
	}

	sched.Advance(navigation.DefaultSettleWindow)
	m = press(m, stateMsg(m.ctrl.Snapshot()))
	if !m.State().Active || site.Router.CurrentPath() != "/finance" {
		t.Fatalf("state %+v at %s", m.State(), site.Router.CurrentPath())
	}
	if !marked(site.DOM, "#budget-card") {
		t.Error("#budget-card should be highlighted")
	}
}

func TestModel_VisitLink(t *testing.T) {
	m, site, _ := newTestModel(t)
	m = press(m, runes("C"))
	if got := site.Router.CurrentPath(); got != "/career" {
		t.Fatalf("path = %q", got)
	}
	if len(site.Router.History()) != 0 {
		t.Error("link visits are not tour navigations")
	}
	if !strings.Contains(m.View(), "Resume builder") {
		t.Error("career page should render")
	}
}

func TestModel_SkipClearsDialog(t *testing.T) {
	m, site, _ := newTestModel(t)
	m = press(m, runes("1"))
	m = press(m, runes("n"))
	m = press(m, runes("s"))
	if m.State().Active {
		t.Fatal("skip should end the tour")
	}
	if len(m.State().Completed) != 0 {
		t.Error("skipping must not complete the tour")
	}
	if len(site.DOM.Marked()) != 0 {
		t.Error("skip should clear markers")
	}
}

func TestModel_SubscriptionDeliversState(t *testing.T) {
	m, _, _ := newTestModel(t)
	wait := m.Init()

	m.ctrl.StartTour("welcome")

	msg, ok := wait().(stateMsg)
	if !ok {
		t.Fatal("expected a stateMsg")
	}
	next, cmd := m.Update(msg)
	if !next.(Model).State().Active {
		t.Error("model should adopt the delivered state")
	}
	if cmd == nil {
		t.Error("model should keep listening for updates")
	}
}

func TestOffer_KeepsLatest(t *testing.T) {
	ch := make(chan tour.State, 1)
	offer(ch, tour.State{TourID: "a"})
	offer(ch, tour.State{TourID: "b"})
	if got := <-ch; got.TourID != "b" {
		t.Errorf("got %q, want b", got.TourID)
	}
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit should emit tea.QuitMsg")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t)
	short := m.View()
	m = press(m, runes("?"))
	if m.View() == short {
		t.Error("? should expand help")
	}
}
