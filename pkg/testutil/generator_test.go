package testutil

import (
	"context"
	"reflect"
	"testing"

	"github.com/vanderheijden86/tourguide/pkg/registry"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := New(DefaultConfig()).Tours(5, 4)
	b := New(DefaultConfig()).Tours(5, 4)

	if len(a) != 5 {
		t.Fatalf("expected 5 tours, got %d", len(a))
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce identical tours")
	}
	AssertAllValid(t, a)
	AssertNoDuplicateIDs(t, a)
}

func TestGenerator_StepShape(t *testing.T) {
	g := New(GeneratorConfig{IDPrefix: "x", PathRate: 1})
	tour := g.Tour(3)

	if tour.ID != "x-1" || len(tour.Steps) != 3 {
		t.Fatalf("unexpected tour %s with %d steps", tour.ID, len(tour.Steps))
	}
	for i, s := range tour.Steps {
		if s.TargetSelector != Selector("x-1", i) {
			t.Errorf("step %d: unexpected selector %q", i, s.TargetSelector)
		}
		if s.Path == "" {
			t.Errorf("step %d: PathRate 1 should always set a path", i)
		}
	}
	if got := len(Selectors(tour)); got != 3 {
		t.Errorf("expected 3 selectors, got %d", got)
	}
}

func TestWriteTourFile_LoadsBack(t *testing.T) {
	dir := t.TempDir()
	tours := New(DefaultConfig()).Tours(3, 3)
	WriteTourFile(t, dir, "generated.yaml", tours...)

	reg, _, err := registry.Load(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(reg.IDs(), []string{"tour-1", "tour-2", "tour-3"}) {
		t.Errorf("unexpected ids %v", reg.IDs())
	}
}
