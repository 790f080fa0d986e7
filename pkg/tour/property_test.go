package tour

import (
	"reflect"
	"sort"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/tourguide/pkg/highlight"
	"github.com/vanderheijden86/tourguide/pkg/model"
	"github.com/vanderheijden86/tourguide/pkg/navigation"
	"github.com/vanderheijden86/tourguide/pkg/registry"
	"github.com/vanderheijden86/tourguide/pkg/scheduler"
	"github.com/vanderheijden86/tourguide/pkg/store"
)

// machineModel is the reference the controller is checked against for tours
// whose steps never navigate.
type machineModel struct {
	steps     map[string]int
	active    string
	index     int
	completed map[string]bool
}

func (m *machineModel) start(id string) {
	if _, ok := m.steps[id]; !ok {
		return
	}
	m.active, m.index = id, 0
}

func (m *machineModel) next() {
	if m.active == "" {
		return
	}
	if m.index+1 >= m.steps[m.active] {
		m.end()
		return
	}
	m.index++
}

func (m *machineModel) end() {
	if m.active == "" {
		return
	}
	m.completed[m.active] = true
	m.active, m.index = "", 0
}

func (m *machineModel) completedIDs() []string {
	ids := make([]string, 0, len(m.completed))
	for id := range m.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func TestController_MatchesModel(t *testing.T) {
	tours := []model.Tour{inPlaceTour("a", 1), inPlaceTour("b", 3), inPlaceTour("c", 4)}

	rapid.Check(t, func(t *rapid.T) {
		dom := highlight.NewMemoryDOM()
		dom.Mount("#t0", "#t1", "#t2", "#t3")
		st := store.NewMemoryStore()
		ctrl := NewController(registry.MustNew(tours...), st, navigation.NewMemoryRouter("/"), dom,
			WithScheduler(scheduler.NewManual()), WithLogger(zap.NewNop()))
		defer ctrl.Close()

		m := &machineModel{
			steps:     map[string]int{"a": 1, "b": 3, "c": 4},
			completed: map[string]bool{},
		}

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 6).Draw(t, "op") {
			case 0:
				id := rapid.SampledFrom([]string{"a", "b", "c", "missing"}).Draw(t, "id")
				ctrl.StartTour(id)
				m.start(id)
			case 1:
				ctrl.NextStep()
				m.next()
			case 2:
				ctrl.PrevStep()
				if m.active != "" && m.index > 0 {
					m.index--
				}
			case 3:
				n := rapid.IntRange(-1, 4).Draw(t, "goto")
				ctrl.GoToStep(n)
				if m.active != "" && n >= 0 && n < m.steps[m.active] {
					m.index = n
				}
			case 4:
				ctrl.SkipTour()
				m.active, m.index = "", 0
			case 5:
				ctrl.EndTour()
				m.end()
			case 6:
				ctrl.RestartTour()
				if m.active != "" {
					m.index = 0
				}
			}

			s := ctrl.Snapshot()
			if s.Active != (m.active != "") || s.TourID != m.active {
				t.Fatalf("active: got %q/%v, want %q", s.TourID, s.Active, m.active)
			}
			if s.Active {
				if s.StepIndex != m.index {
					t.Fatalf("index: got %d, want %d", s.StepIndex, m.index)
				}
				if s.StepIndex < 0 || s.StepIndex >= s.TotalSteps {
					t.Fatalf("index %d outside [0,%d)", s.StepIndex, s.TotalSteps)
				}
			}
			if !reflect.DeepEqual(s.Completed, m.completedIDs()) {
				t.Fatalf("completed: got %v, want %v", s.Completed, m.completedIDs())
			}
			if got := st.Load().CompletedTours; len(got) != len(m.completed) {
				t.Fatalf("persisted %v, want %v", got, m.completedIDs())
			}

			marked := dom.Marked()
			if !s.Active && len(marked) != 0 {
				t.Fatalf("idle controller left markers %v", marked)
			}
			if s.Active && len(marked) != 1 {
				t.Fatalf("expected exactly one highlight, got %v", marked)
			}
		}
	})
}
