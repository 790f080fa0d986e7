package ui

import (
	"github.com/vanderheijden86/tourguide/pkg/highlight"
	"github.com/vanderheijden86/tourguide/pkg/navigation"
)

// Element is a highlightable block on a demo page.
type Element struct {
	Selector string
	Label    string
	Body     string
}

// Page is one route of the demo site.
type Page struct {
	Path     string
	Title    string
	Key      string // link shortcut
	Elements []Element
}

// NavBar is rendered on every page.
var NavBar = []Element{
	{Selector: "#nav-home", Label: "Home"},
	{Selector: "#nav-finance", Label: "Finance"},
	{Selector: "#nav-career", Label: "Career"},
	{Selector: "#nav-wellness", Label: "Wellness"},
	{Selector: "#nav-profile", Label: "Profile"},
}

// DemoPages is the site the builtin tours walk through.
func DemoPages() []Page {
	return []Page{
		{Path: "/", Title: "Home", Key: "H", Elements: []Element{
			{Selector: "#hero", Label: "Life skills, one step at a time", Body: "Pick an area from the navigation bar to get started."},
		}},
		{Path: "/finance", Title: "Finance", Key: "F", Elements: []Element{
			{Selector: "#budget-card", Label: "Monthly budget", Body: "Income 2,400 · Spent 1,730 · Left 670"},
			{Selector: "#savings-goal", Label: "Savings goal", Body: "Emergency fund: 45% of 1,000"},
		}},
		{Path: "/career", Title: "Career", Key: "C", Elements: []Element{
			{Selector: "#resume-builder", Label: "Resume builder", Body: "3 templates · last edited yesterday"},
			{Selector: "#interview-practice", Label: "Interview practice", Body: "12 questions ready"},
		}},
		{Path: "/wellness", Title: "Wellness", Key: "W", Elements: []Element{
			{Selector: "#mood-tracker", Label: "Mood tracker", Body: "How are you feeling today?"},
			{Selector: "#habit-list", Label: "Habits", Body: "Walk · Read · Drink water"},
		}},
		{Path: "/profile", Title: "Profile", Key: "P", Elements: []Element{
			{Selector: "#profile-name", Label: "Display name", Body: "Used in tour greetings"},
		}},
	}
}

// Site binds the demo pages to an in-memory router and DOM: every route
// change remounts the page's elements.
type Site struct {
	Router *navigation.MemoryRouter
	DOM    *highlight.MemoryDOM
	pages  []Page
}

// NewSite creates a site sitting at start.
func NewSite(start string) *Site {
	s := &Site{
		Router: navigation.NewMemoryRouter(start),
		DOM:    highlight.NewMemoryDOM(),
		pages:  DemoPages(),
	}
	s.mount(start)
	s.Router.OnChange(s.mount)
	return s
}

func (s *Site) mount(path string) {
	sels := make([]string, 0, len(NavBar)+4)
	for _, e := range NavBar {
		sels = append(sels, e.Selector)
	}
	if p, ok := s.PageFor(path); ok {
		for _, e := range p.Elements {
			sels = append(sels, e.Selector)
		}
	}
	s.DOM.Mount(sels...)
}

// Pages returns the demo pages.
func (s *Site) Pages() []Page {
	return s.pages
}

// PageFor returns the page at path.
func (s *Site) PageFor(path string) (Page, bool) {
	for _, p := range s.pages {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}

// Current returns the page the router is on. Unknown routes render as an
// empty page titled by the path.
func (s *Site) Current() Page {
	path := s.Router.CurrentPath()
	if p, ok := s.PageFor(path); ok {
		return p
	}
	return Page{Path: path, Title: "Not found: " + path}
}
