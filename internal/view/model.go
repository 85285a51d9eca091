package view

import "github.com/labctl/labctl/internal/labapi"

// Event is one of the three changes the view reacts to.
type Event interface {
	isEvent()
}

// SnapshotChanged carries a new cache snapshot.
type SnapshotChanged struct {
	Labs []labapi.Lab
}

// SearchChanged carries new search text.
type SearchChanged struct {
	Text string
}

// PageChanged requests a page. Out-of-range values are clamped.
type PageChanged struct {
	Page int
}

func (SnapshotChanged) isEvent() {}
func (SearchChanged) isEvent()   {}
func (PageChanged) isEvent()     {}

// Model holds the view inputs and recomputes the page on every event.
// The zero value is an empty model on page 1.
type Model struct {
	labs    []labapi.Lab
	search  string
	page    int
	current Page
}

// Handle applies ev and returns the freshly derived page.
func (m *Model) Handle(ev Event) Page {
	switch ev := ev.(type) {
	case SnapshotChanged:
		m.labs = ev.Labs
	case SearchChanged:
		if ev.Text != m.search {
			m.search = ev.Text
			m.page = 1
		}
	case PageChanged:
		m.page = ev.Page
	}
	m.current = Derive(m.labs, m.search, m.page)
	// Keep the stored page valid so a later "next" starts from what is shown.
	m.page = m.current.Page
	return m.current
}

// Current returns the last derived page.
func (m *Model) Current() Page {
	if m.current.Page == 0 {
		return Derive(m.labs, m.search, m.page)
	}
	return m.current
}

// Search returns the active search text.
func (m *Model) Search() string { return m.search }

// NextPage moves forward one page if possible.
func (m *Model) NextPage() Page {
	return m.Handle(PageChanged{Page: m.Current().Page + 1})
}

// PrevPage moves back one page if possible.
func (m *Model) PrevPage() Page {
	return m.Handle(PageChanged{Page: m.Current().Page - 1})
}
