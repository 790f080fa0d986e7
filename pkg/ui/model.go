// Package ui is the terminal playground: a small demo site rendered with
// lipgloss, with the tour controller driving highlights and route changes
// on it exactly as it would in a browser.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tourguide/pkg/tour"
)

// stateMsg carries a controller snapshot into the program.
type stateMsg tour.State

// Model is the playground's bubbletea model.
type Model struct {
	ctrl        *tour.Controller
	site        *Site
	theme       Theme
	keys        keyMap
	help        help.Model
	md          *MarkdownRenderer
	updates     chan tour.State
	unsubscribe func()

	state  tour.State
	width  int
	height int
}

// NewModel builds the playground around an existing controller. The
// controller must drive site.Router and site.DOM.
func NewModel(ctrl *tour.Controller, site *Site, theme Theme) Model {
	updates := make(chan tour.State, 1)
	m := Model{
		ctrl:    ctrl,
		site:    site,
		theme:   theme,
		keys:    defaultKeyMap(),
		help:    help.New(),
		md:      NewMarkdownRenderer(maxDialogWidth - 6),
		updates: updates,
		state:   ctrl.Snapshot(),
		width:   80,
		height:  24,
	}
	m.unsubscribe = ctrl.Subscribe(func(s tour.State) { offer(updates, s) })
	return m
}

// offer replaces any undelivered snapshot with s, so the program always
// renders the latest state and the controller never blocks on the UI.
func offer(ch chan tour.State, s tour.State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func waitForState(ch <-chan tour.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ch)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForState(m.updates)
}

// Close detaches the model from the controller.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.md = NewMarkdownRenderer(m.dialogWidth() - 6)
		return m, nil

	case stateMsg:
		m.state = tour.State(msg)
		return m, waitForState(m.updates)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Next):
			m.ctrl.NextStep()
		case key.Matches(msg, m.keys.Prev):
			m.ctrl.PrevStep()
		case key.Matches(msg, m.keys.Skip):
			m.ctrl.SkipTour()
		case key.Matches(msg, m.keys.End):
			m.ctrl.EndTour()
		case key.Matches(msg, m.keys.Restart):
			m.ctrl.RestartTour()
		case key.Matches(msg, m.keys.Start):
			m.startTour(int(msg.String()[0] - '1'))
		case key.Matches(msg, m.keys.Visit):
			m.visit(msg.String())
		}
		m.state = m.ctrl.Snapshot()
		return m, nil
	}
	return m, nil
}

func (m Model) startTour(i int) {
	tours := m.ctrl.Tours()
	if i < 0 || i >= len(tours) {
		return
	}
	m.ctrl.StartTour(tours[i].ID)
}

func (m Model) visit(k string) {
	for _, p := range m.site.Pages() {
		if p.Key == k {
			m.site.Router.Visit(p.Path)
			return
		}
	}
}

// State returns the last snapshot the model rendered from.
func (m Model) State() tour.State {
	return m.state
}

func (m Model) dialogWidth() int {
	w := m.width - 4
	if w > maxDialogWidth {
		w = maxDialogWidth
	}
	if w < minDialogWidth {
		w = minDialogWidth
	}
	return w
}

// View implements tea.Model.
func (m Model) View() string {
	page := m.site.Current()

	sections := []string{
		m.renderHeader(page),
		m.renderNav(),
		m.renderPage(page),
	}
	switch {
	case m.state.Active:
		sections = append(sections, m.renderDialog())
	case m.state.Pending != "":
		sections = append(sections, m.theme.Help.Render(fmt.Sprintf("Opening %s…", m.state.Pending)))
	default:
		sections = append(sections, m.renderTourList())
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(page Page) string {
	name := m.state.UserName
	if name == "" {
		name = "guest"
	}
	title := m.theme.Header.Render("tourguide")
	info := m.theme.Help.Render(fmt.Sprintf(" %s · signed in as %s", page.Path, name))
	return title + info
}

func (m Model) renderNav() string {
	items := make([]string, 0, len(NavBar))
	for _, e := range NavBar {
		style, marked := m.theme.MarkerStyle(m.site.DOM.Classes(e.Selector))
		if !marked {
			style = m.theme.NavItem
		}
		items = append(items, style.Render(e.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, items...)
}

func (m Model) renderPage(page Page) string {
	r := m.theme.Renderer
	title := r.NewStyle().Bold(true).Foreground(m.theme.Primary).MarginTop(1).Render(page.Title)

	cards := []string{title}
	for _, e := range page.Elements {
		style, _ := m.theme.MarkerStyle(m.site.DOM.Classes(e.Selector))
		label := r.NewStyle().Bold(true).Render(e.Label)
		body := m.theme.Help.Render(e.Body)
		cards = append(cards, style.Render(joinNonEmpty("\n", label, body)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) renderDialog() string {
	s := m.state
	if s.Step == nil {
		return ""
	}
	width := m.dialogWidth()
	r := m.theme.Renderer

	progress := fmt.Sprintf("%d/%d", s.StepIndex+1, s.TotalSteps)
	title := truncateRunesHelper(s.Step.Title, width-len(progress)-8, "…")
	head := r.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(title) +
		"  " + m.theme.Help.Render(progress)

	var buttons []string
	if s.Step.PrevVisible() && !s.IsFirst() {
		buttons = append(buttons, m.theme.Button.Render("← Back"))
	}
	if s.Step.SkipVisible() {
		buttons = append(buttons, m.theme.Help.Render("s Skip"))
	}
	if s.IsLast() {
		buttons = append(buttons, m.theme.Button.Render("Finish →"))
	} else {
		buttons = append(buttons, m.theme.Button.Render("Next →"))
	}

	body := joinNonEmpty("\n\n",
		head,
		m.md.Render(s.Step.Content),
		strings.Join(buttons, "   "),
	)
	return m.theme.Dialog.Width(width).Render(body)
}

func (m Model) renderTourList() string {
	var b strings.Builder
	b.WriteString(m.theme.Base.Bold(true).Render("Tours"))
	b.WriteString("\n")
	for i, t := range m.ctrl.Tours() {
		mark := m.theme.Help.Render("·")
		if t.Completed {
			mark = m.theme.Renderer.NewStyle().Foreground(m.theme.Done).Render("✓")
		}
		fmt.Fprintf(&b, "%s %d  %s\n", mark, i+1, t.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}
