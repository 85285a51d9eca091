package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/labctl/labctl/internal/form"
)

const dialogWidth = 56

// overlay centers content on the screen.
func (m Model) overlay(content string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func (m Model) renderEditDialog() string {
	open, ok := m.dialogs.Edit().(form.EditOpen)
	if !ok {
		return ""
	}
	s := m.styles()

	title := "Edit lab"
	if open.IsCreate() {
		title = "New lab"
	}

	var b strings.Builder
	b.WriteString(s.Text.Bold(true).Render(title))
	b.WriteString("\n\n")

	for i, f := range form.Fields {
		label := f.Label()
		if f == form.FieldEstimatedTime {
			label = fmt.Sprintf("Estimated time (%d-%d min)", form.MinEstimatedTime, form.MaxEstimatedTime)
		}
		fieldStyle := s.Field
		labelStyle := s.MutedText
		if i == m.fieldFocus {
			fieldStyle = s.FocusedField
			labelStyle = s.AccentText
		}

		body := labelStyle.Render(label) + "\n" + m.fields[i].View()
		if problem, bad := open.Errors[f]; bad {
			body += "\n" + s.DangerText.Render(problem)
		}
		b.WriteString(fieldStyle.Render(body))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if open.Submitting {
		b.WriteString(s.AccentText.Render(m.spinner.View() + " Saving..."))
	} else {
		b.WriteString(s.FaintText.Render("tab next · ctrl+s save · esc cancel"))
	}

	return m.overlay(s.Dialog.Width(dialogWidth).Render(b.String()))
}

func (m Model) renderDeleteDialog() string {
	open, ok := m.dialogs.Delete().(form.DeleteOpen)
	if !ok {
		return ""
	}
	s := m.styles()

	var b strings.Builder
	b.WriteString(s.DangerText.Render("Delete lab?"))
	b.WriteString("\n\n")
	b.WriteString(s.Text.Render(fmt.Sprintf("%q will be removed permanently.", open.Name)))
	b.WriteString("\n")
	b.WriteString(s.FaintText.Render(open.LabID))
	b.WriteString("\n\n")
	if open.Submitting {
		b.WriteString(s.AccentText.Render(m.spinner.View() + " Deleting..."))
	} else {
		b.WriteString(s.FaintText.Render("y delete · n/esc keep"))
	}

	return m.overlay(s.DangerDialog.Width(dialogWidth).Render(b.String()))
}
