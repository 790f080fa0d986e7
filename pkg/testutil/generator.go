// Package testutil provides tour fixture generators and assertions.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/tourguide/pkg/model"
	"github.com/vanderheijden86/tourguide/pkg/registry"
)

// GeneratorConfig controls tour generation.
type GeneratorConfig struct {
	Seed     int64    // Random seed for determinism (0 = fixed default)
	IDPrefix string   // Prefix for tour IDs (default: "tour")
	Pages    []string // Routes steps may ask for
	PathRate float64  // Chance a step names a route (0-1)
	Sizes    []model.HighlightSize
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		IDPrefix: "tour",
		Pages:    []string{"/", "/finance", "/career", "/wellness", "/profile"},
		PathRate: 0.5,
		Sizes:    []model.HighlightSize{"", model.HighlightSmall, model.HighlightMedium, model.HighlightLarge},
	}
}

// Generator creates tour fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
	n   int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = def.IDPrefix
	}
	if len(cfg.Pages) == 0 {
		cfg.Pages = def.Pages
	}
	if len(cfg.Sizes) == 0 {
		cfg.Sizes = def.Sizes
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Tour generates one valid tour with the given number of steps. Step i
// targets "#<tour>-<i>".
func (g *Generator) Tour(steps int) model.Tour {
	g.n++
	id := fmt.Sprintf("%s-%d", g.cfg.IDPrefix, g.n)
	t := model.Tour{ID: id, Title: fmt.Sprintf("Tour %d", g.n)}
	for i := 0; i < steps; i++ {
		step := model.Step{
			ID:             fmt.Sprintf("%s-step-%d", id, i),
			Title:          fmt.Sprintf("Step %d for {userName}", i+1),
			Content:        fmt.Sprintf("Content of step %d.", i+1),
			TargetSelector: Selector(id, i),
			HighlightSize:  g.cfg.Sizes[g.rng.Intn(len(g.cfg.Sizes))],
		}
		if g.rng.Float64() < g.cfg.PathRate {
			step.Path = g.cfg.Pages[g.rng.Intn(len(g.cfg.Pages))]
		}
		t.Steps = append(t.Steps, step)
	}
	return t
}

// Tours generates n tours with between 1 and maxSteps steps each.
func (g *Generator) Tours(n, maxSteps int) []model.Tour {
	if maxSteps < 1 {
		maxSteps = 1
	}
	out := make([]model.Tour, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Tour(1+g.rng.Intn(maxSteps)))
	}
	return out
}

// Selector is the target selector the generator uses for step i of a tour.
func Selector(tourID string, i int) string {
	return fmt.Sprintf("#%s-%d", tourID, i)
}

// Selectors lists every target selector of tours.
func Selectors(tours ...model.Tour) []string {
	var out []string
	for _, t := range tours {
		for _, s := range t.Steps {
			if s.TargetSelector != "" {
				out = append(out, s.TargetSelector)
			}
		}
	}
	return out
}

// WriteTourFile writes tours as a YAML definition file and returns its path.
func WriteTourFile(t testing.TB, dir, name string, tours ...model.Tour) string {
	t.Helper()
	data, err := yaml.Marshal(registry.File{Tours: tours})
	if err != nil {
		t.Fatalf("marshaling tours: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
