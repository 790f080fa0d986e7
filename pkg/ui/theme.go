package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tourguide/pkg/highlight"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Done    lipgloss.AdaptiveColor
	Marker  lipgloss.AdaptiveColor

	Base    lipgloss.Style
	Header  lipgloss.Style
	NavItem lipgloss.Style
	Card    lipgloss.Style
	Dialog  lipgloss.Style
	Button  lipgloss.Style
	Help    lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,
		Primary:  ColorPrimary,
		Subtext:  ColorSubtext,
		Border:   lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Muted:    ColorMuted,
		Done:     ColorSuccess,
		Marker:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.NavItem = r.NewStyle().Padding(0, 1).Foreground(t.Subtext)

	t.Card = r.NewStyle().
		Border(lipgloss.HiddenBorder()).
		Padding(0, 1)

	t.Dialog = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 2)

	t.Button = r.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.Help = r.NewStyle().Foreground(t.Muted)

	return t
}

// categoryColors is indexed like highlight.Categories.
var categoryColors = []string{"#50FA7B", "#8BE9FD", "#FF79C6", "#FF5555", "#F1FA8C", "#FFB86C", "#6699FF", "#BD93F9"}

// MarkerStyle returns the style for an element carrying the given classes,
// and whether the element is highlighted at all.
func (t Theme) MarkerStyle(classes []string) (lipgloss.Style, bool) {
	set := make(map[string]bool, len(classes))
	for _, c := range classes {
		set[c] = true
	}
	if !set[highlight.Marker] {
		return t.Card, false
	}

	border := lipgloss.RoundedBorder()
	switch {
	case set[highlight.Marker+"-sm"]:
		border = lipgloss.NormalBorder()
	case set[highlight.Marker+"-lg"]:
		border = lipgloss.DoubleBorder()
	}

	var color lipgloss.TerminalColor = t.Marker
	for i, c := range highlight.Categories {
		if set[highlight.Marker+"-"+c] {
			color = ThemeFg(categoryColors[i%len(categoryColors)])
			break
		}
	}

	return t.Renderer.NewStyle().
		Border(border).
		BorderForeground(color).
		Padding(0, 1), true
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
