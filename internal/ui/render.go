package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/notify"
	"github.com/labctl/labctl/internal/state"
)

// column widths; the description column takes whatever is left.
const (
	nameWidth    = 24
	imageWidth   = 18
	timeWidth    = 6
	statusWidth  = 12
	createdWidth = 16
	minDescWidth = 10
	columnGap    = 2
)

// renderMain renders the list screen.
func (m Model) renderMain() string {
	parts := []string{
		m.renderHeader(),
		m.renderSearch(),
		m.renderBody(),
		m.renderPager(),
	}
	if toasts := m.renderToasts(); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, m.styles().Footer.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) styles() Styles {
	return m.theme.Styles()
}

func (m Model) renderHeader() string {
	s := m.styles()

	chips := make([]string, 0, 3)
	for _, key := range []labapi.FilterKey{labapi.FilterAll, labapi.FilterActive, labapi.FilterInactive} {
		if key == m.filter {
			chips = append(chips, s.Selected.Padding(0, 1).Render(key.Label()))
		} else {
			chips = append(chips, s.MutedText.Padding(0, 1).Render(key.Label()))
		}
	}

	status := s.FaintText.Render("never updated")
	switch {
	case m.loading || m.entry.State == state.StateLoading:
		status = s.AccentText.Render(m.spinner.View() + " loading")
	case !m.lastUpdated.IsZero():
		status = s.FaintText.Render("updated " + m.lastUpdated.Local().Format("15:04:05"))
	}

	parts := []string{
		s.Logo.Render("labctl"),
		s.MutedText.Render(m.apiBaseURL),
		strings.Join(chips, " "),
		status,
	}
	return s.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderSearch() string {
	s := m.styles()
	if m.searching {
		return " " + m.search.View()
	}
	if text := m.list.Search(); text != "" {
		return " " + s.AccentText.Render("/ "+text) + s.FaintText.Render("  (esc in search clears)")
	}
	return " " + s.FaintText.Render("/ to search")
}

func (m Model) renderBody() string {
	s := m.styles()

	switch {
	case m.entry.State == state.StateFailed:
		msg := "Failed to load labs"
		if m.entry.Err != nil {
			msg += ": " + m.entry.Err.Error()
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(
			s.DangerText.Render(msg) + "\n" + s.MutedText.Render("press r to retry"))

	case m.entry.State == state.StateEmpty,
		m.entry.State == state.StateLoading && len(m.entry.Labs) == 0:
		return lipgloss.NewStyle().Padding(1, 2).Render(
			s.AccentText.Render(m.spinner.View() + " Loading labs..."))

	case m.page.Empty:
		msg := "No labs found."
		if search := m.list.Search(); search != "" {
			msg = fmt.Sprintf("No labs match %q.", search)
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(
			s.MutedText.Render(msg) + "\n" + s.FaintText.Render("press n to create one"))
	}

	return m.renderTable()
}

func (m Model) renderTable() string {
	s := m.styles()
	descWidth := m.width - (nameWidth + imageWidth + timeWidth + statusWidth + createdWidth + 6*columnGap + 1)
	if descWidth < minDescWidth {
		descWidth = minDescWidth
	}

	header := []string{
		cell(s.TableHeader, "NAME", nameWidth),
		cell(s.TableHeader, "DESCRIPTION", descWidth),
		cell(s.TableHeader, "BASE IMAGE", imageWidth),
		cell(s.TableHeader, "TIME", timeWidth),
		cell(s.TableHeader, "STATUS", statusWidth),
		cell(s.TableHeader, "CREATED", createdWidth),
	}
	rows := []string{" " + lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for i, lab := range m.page.Rows {
		style := s.Text
		if i == m.selected {
			style = s.Selected
		}
		cells := []string{
			cell(style, lab.Name, nameWidth),
			cell(style, strings.Join(strings.Fields(lab.Description), " "), descWidth),
			cell(style, lab.BaseImage, imageWidth),
			cell(style, strconv.Itoa(lab.EstimatedTime)+"m", timeWidth),
			lipgloss.NewStyle().Width(statusWidth + columnGap).Render(m.statusBadge(lab)),
			cell(style, createdLabel(lab), createdWidth),
		}
		marker := " "
		if i == m.selected {
			marker = s.AccentText.Render("›")
		}
		rows = append(rows, marker+lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

// cell renders value clipped to width plus the column gap.
func cell(style lipgloss.Style, value string, width int) string {
	return style.Width(width + columnGap).Render(clip(value, width))
}

func (m Model) statusBadge(lab labapi.Lab) string {
	s := m.styles()
	if m.engine != nil && m.engine.IsPending(lab.ID) {
		return s.StatusStyle("pending").Render("updating")
	}
	if lab.IsActive {
		return s.StatusStyle("active").Render("active")
	}
	return s.StatusStyle("inactive").Render("inactive")
}

func (m Model) renderPager() string {
	s := m.styles()
	if m.page.Empty {
		return ""
	}
	first, last := m.page.Range()
	info := fmt.Sprintf("Showing %d-%d of %d", first, last, m.page.Total)
	pages := fmt.Sprintf("Page %d of %d", m.page.Page, m.page.TotalPages)

	prev := s.FaintText.Render("‹ prev")
	if m.page.HasPrev() {
		prev = s.AccentText.Render("‹ prev")
	}
	next := s.FaintText.Render("next ›")
	if m.page.HasNext() {
		next = s.AccentText.Render("next ›")
	}
	return " " + strings.Join([]string{s.MutedText.Render(info), s.Text.Render(pages), prev, next}, "  ")
}

func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	s := m.styles()
	lines := make([]string, 0, len(m.toasts))
	for _, n := range m.toasts {
		if n.Level == notify.LevelError {
			lines = append(lines, " "+s.DangerText.Render("✗ "+n.Message))
		} else {
			lines = append(lines, " "+s.SuccessText.Render("✓ "+n.Message))
		}
	}
	return strings.Join(lines, "\n")
}

func createdLabel(lab labapi.Lab) string {
	ts := lab.ParsedCreatedAt()
	if ts.IsZero() {
		return lab.CreatedAt
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func clip(value string, width int) string {
	if width <= 0 {
		return ""
	}
	return truncate.StringWithTail(value, uint(width), "…")
}
