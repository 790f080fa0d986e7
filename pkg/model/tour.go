// Package model defines the tour and step types shared by the registry,
// the controller and the host adapters.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// Placement is where a step dialog is anchored relative to its target.
type Placement string

const (
	PlacementTop    Placement = "top"
	PlacementRight  Placement = "right"
	PlacementBottom Placement = "bottom"
	PlacementLeft   Placement = "left"
	PlacementCenter Placement = "center"
)

// IsValid reports whether p is a known placement. Empty is valid (center).
func (p Placement) IsValid() bool {
	switch p {
	case "", PlacementTop, PlacementRight, PlacementBottom, PlacementLeft, PlacementCenter:
		return true
	}
	return false
}

// HighlightSize selects the size variant of the highlight marker.
type HighlightSize string

const (
	HighlightSmall  HighlightSize = "sm"
	HighlightMedium HighlightSize = "md"
	HighlightLarge  HighlightSize = "lg"
)

// IsValid reports whether s is a known size. Empty is valid (md).
func (s HighlightSize) IsValid() bool {
	switch s {
	case "", HighlightSmall, HighlightMedium, HighlightLarge:
		return true
	}
	return false
}

// OrDefault returns s, or HighlightMedium when s is empty.
func (s HighlightSize) OrDefault() HighlightSize {
	if s == "" {
		return HighlightMedium
	}
	return s
}

// Validation errors.
var (
	ErrNoSteps        = errors.New("tour has no steps")
	ErrMissingID      = errors.New("missing id")
	ErrDuplicateKey   = errors.New("duplicate step id")
	ErrStepOutOfRange = errors.New("step index out of range")
)

// Step is one unit of tour content. Title and Content may contain
// {userName}, which is resolved when the step is read.
type Step struct {
	ID             string        `yaml:"id" json:"id"`
	Title          string        `yaml:"title" json:"title"`
	Content        string        `yaml:"content" json:"content"`
	TargetSelector string        `yaml:"target_selector,omitempty" json:"targetSelector,omitempty"`
	Path           string        `yaml:"path,omitempty" json:"path,omitempty"`
	Placement      Placement     `yaml:"placement,omitempty" json:"placement,omitempty"`
	HighlightSize  HighlightSize `yaml:"highlight_size,omitempty" json:"highlightSize,omitempty"`
	ShowSkipButton *bool         `yaml:"show_skip_button,omitempty" json:"showSkipButton,omitempty"`
	ShowPrevButton *bool         `yaml:"show_prev_button,omitempty" json:"showPrevButton,omitempty"`

	// OnComplete runs when the user moves forward off this step.
	OnComplete func() `yaml:"-" json:"-"`
}

// SkipVisible reports whether the skip control should be offered.
func (s Step) SkipVisible() bool {
	return s.ShowSkipButton == nil || *s.ShowSkipButton
}

// PrevVisible reports whether the back control should be offered.
func (s Step) PrevVisible() bool {
	return s.ShowPrevButton == nil || *s.ShowPrevButton
}

// Tour is a named, ordered walkthrough.
type Tour struct {
	ID           string `yaml:"id" json:"id"`
	Title        string `yaml:"title" json:"title"`
	Steps        []Step `yaml:"steps" json:"steps"`
	RequiredPath string `yaml:"required_path,omitempty" json:"requiredPath,omitempty"`
}

// StartPath is the route the tour must be on before its first step shows:
// RequiredPath when set, otherwise the first step's path.
func (t Tour) StartPath() string {
	if t.RequiredPath != "" {
		return t.RequiredPath
	}
	if len(t.Steps) > 0 {
		return t.Steps[0].Path
	}
	return ""
}

// Validate checks the structural invariants of a tour.
func (t Tour) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("tour: %w", ErrMissingID)
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("tour %q: %w", t.ID, ErrNoSteps)
	}
	seen := make(map[string]bool, len(t.Steps))
	for i, step := range t.Steps {
		if strings.TrimSpace(step.ID) == "" {
			return fmt.Errorf("tour %q step %d: %w", t.ID, i, ErrMissingID)
		}
		if seen[step.ID] {
			return fmt.Errorf("tour %q step %q: %w", t.ID, step.ID, ErrDuplicateKey)
		}
		seen[step.ID] = true
		if !step.Placement.IsValid() {
			return fmt.Errorf("tour %q step %q: invalid placement %q", t.ID, step.ID, step.Placement)
		}
		if !step.HighlightSize.IsValid() {
			return fmt.Errorf("tour %q step %q: invalid highlight size %q", t.ID, step.ID, step.HighlightSize)
		}
	}
	return nil
}

// StepAt returns step i.
func (t Tour) StepAt(i int) (Step, error) {
	if i < 0 || i >= len(t.Steps) {
		return Step{}, fmt.Errorf("tour %q step %d of %d: %w", t.ID, i, len(t.Steps), ErrStepOutOfRange)
	}
	return t.Steps[i], nil
}

// Clone returns a copy of the tour whose step slice is not shared.
func (t Tour) Clone() Tour {
	c := t
	c.Steps = append([]Step(nil), t.Steps...)
	return c
}
