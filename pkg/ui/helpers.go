package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		// Even suffix is too wide, truncate suffix
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// MarkdownRenderer renders step content, falling back to the raw text when
// glamour is unavailable or fails.
type MarkdownRenderer struct {
	width int
	tr    *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer wrapping at width.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	tr, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	return &MarkdownRenderer{width: width, tr: tr}
}

// Render returns content as terminal markdown.
func (r *MarkdownRenderer) Render(content string) string {
	if r == nil || r.tr == nil {
		return content
	}
	out, err := r.tr.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// Width returns the wrap width.
func (r *MarkdownRenderer) Width() int {
	if r == nil {
		return 0
	}
	return r.width
}
