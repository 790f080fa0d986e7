package highlight

import (
	"sort"
	"sync"
)

// MemoryDOM is an in-memory Port. Elements are identified by their selector
// and kept in mount order, so "first match" is the first mounted element.
type MemoryDOM struct {
	mu       sync.Mutex
	order    []string
	classes  map[string]map[string]bool
	scrolled []string
}

// NewMemoryDOM returns an empty DOM.
func NewMemoryDOM() *MemoryDOM {
	return &MemoryDOM{classes: make(map[string]map[string]bool)}
}

// Mount replaces the set of elements on the page. Classes on elements that
// survive the remount are kept.
func (d *MemoryDOM) Mount(selectors ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := make(map[string]map[string]bool, len(selectors))
	d.order = d.order[:0]
	for _, sel := range selectors {
		if _, dup := next[sel]; dup {
			continue
		}
		if existing, ok := d.classes[sel]; ok {
			next[sel] = existing
		} else {
			next[sel] = make(map[string]bool)
		}
		d.order = append(d.order, sel)
	}
	d.classes = next
}

// Apply implements Port.
func (d *MemoryDOM) Apply(selector string, classes ...string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.classes[selector]
	if !ok {
		return false, nil
	}
	for _, c := range classes {
		set[c] = true
	}
	return true, nil
}

// ClearAll implements Port.
func (d *MemoryDOM) ClearAll(classes ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, set := range d.classes {
		for _, c := range classes {
			delete(set, c)
		}
	}
	return nil
}

// ScrollIntoView implements Port.
func (d *MemoryDOM) ScrollIntoView(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.classes[selector]; ok {
		d.scrolled = append(d.scrolled, selector)
	}
	return nil
}

// Classes returns the sorted classes on an element.
func (d *MemoryDOM) Classes(selector string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []string
	for c := range d.classes[selector] {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Marked returns the selectors of elements carrying the generic marker.
func (d *MemoryDOM) Marked() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []string
	for _, sel := range d.order {
		if d.classes[sel][Marker] {
			out = append(out, sel)
		}
	}
	return out
}

// Scrolled returns every selector scrolled into view, in order.
func (d *MemoryDOM) Scrolled() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.scrolled...)
}
