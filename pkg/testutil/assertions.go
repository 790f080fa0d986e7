package testutil

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/tourguide/pkg/highlight"
	"github.com/vanderheijden86/tourguide/pkg/model"
	"github.com/vanderheijden86/tourguide/pkg/navigation"
)

// AssertAllValid verifies all tours pass validation.
func AssertAllValid(t testing.TB, tours []model.Tour) {
	t.Helper()
	for i, tour := range tours {
		if err := tour.Validate(); err != nil {
			t.Errorf("tour %d (%s) invalid: %v", i, tour.ID, err)
		}
	}
}

// AssertNoDuplicateIDs verifies all tour IDs are unique.
func AssertNoDuplicateIDs(t testing.TB, tours []model.Tour) {
	t.Helper()
	seen := make(map[string]bool)
	for _, tour := range tours {
		if seen[tour.ID] {
			t.Errorf("duplicate tour ID: %s", tour.ID)
		}
		seen[tour.ID] = true
	}
}

// AssertMarked verifies exactly the given elements carry the highlight marker.
func AssertMarked(t testing.TB, dom *highlight.MemoryDOM, want ...string) {
	t.Helper()
	got := dom.Marked()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("marked elements: got %v, want %v", got, want)
	}
}

// AssertHistory verifies the router received exactly these navigations.
func AssertHistory(t testing.TB, router *navigation.MemoryRouter, want ...string) {
	t.Helper()
	got := router.History()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("navigations: got %v, want %v", got, want)
	}
}
