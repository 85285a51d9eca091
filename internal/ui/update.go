package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/labctl/labctl/internal/form"
	"github.com/labctl/labctl/internal/state"
	"github.com/labctl/labctl/internal/view"
)

// handleKey routes keyboard input to whichever layer owns focus: help
// overlay, open dialog, search box, then the list itself.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if _, ok := m.dialogs.Edit().(form.EditOpen); ok {
		return m.handleEditKey(msg)
	}
	if _, ok := m.dialogs.Delete().(form.DeleteOpen); ok {
		return m.handleDeleteKey(msg)
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.fetchCmd(m.filter, true)

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.page.Rows)-1 {
			m.selected++
		}

	case key.Matches(msg, m.keys.NextPage):
		m.page = m.list.NextPage()
		m.selected = 0

	case key.Matches(msg, m.keys.PrevPage):
		m.page = m.list.PrevPage()
		m.selected = 0

	case key.Matches(msg, m.keys.CycleFilter):
		return m.switchFilter()

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Create):
		m.dialogs.OpenCreate()
		return m, m.loadFields()

	case key.Matches(msg, m.keys.Edit):
		if lab, ok := m.selectedLab(); ok {
			m.dialogs.OpenEdit(lab)
			return m, m.loadFields()
		}

	case key.Matches(msg, m.keys.Delete):
		if lab, ok := m.selectedLab(); ok {
			m.dialogs.OpenDelete(lab)
		}

	case key.Matches(msg, m.keys.Toggle):
		lab, ok := m.selectedLab()
		if !ok || m.engine == nil || m.engine.IsPending(lab.ID) {
			return m, nil
		}
		return m, m.toggleCmd(lab.ID)
	}
	return m, nil
}

// switchFilter shows the next status filter. A fresh cached list is shown
// immediately; anything else is loaded.
func (m Model) switchFilter() (tea.Model, tea.Cmd) {
	m.filter = m.filter.Next()
	m.selected = 0
	m.savePrefs()
	if m.engine == nil {
		return m, nil
	}
	m.engine.SetFilter(m.filter)
	entry := m.engine.Read(m.filter)
	m.applyEntry(entry)
	if entry.Ready() {
		return m, nil
	}
	m.loading = true
	return m, m.fetchCmd(m.filter, false)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.searching = false
		m.page = m.list.Handle(view.SearchChanged{Text: ""})
		m.selected = 0
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.searching = false
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if text := m.search.Value(); text != m.list.Search() {
		m.page = m.list.Handle(view.SearchChanged{Text: text})
		m.selected = 0
	}
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	open := m.dialogs.Edit().(form.EditOpen)

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.dialogs.CancelEdit()
		m.blurFields()
		return m, nil

	case open.Submitting:
		return m, nil

	case msg.String() == "ctrl+s",
		msg.Type == tea.KeyEnter && m.fieldFocus == len(m.fields)-1:
		return m.submitEdit()

	case key.Matches(msg, m.keys.NextField), msg.Type == tea.KeyEnter:
		return m, m.focusField(m.fieldFocus + 1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusField(m.fieldFocus - 1)
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	m.dialogs.SetField(form.Fields[m.fieldFocus], m.fields[m.fieldFocus].Value())
	return m, cmd
}

func (m Model) submitEdit() (tea.Model, tea.Cmd) {
	sub, err := m.dialogs.SubmitEdit()
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			for i, f := range form.Fields {
				if _, bad := verr.Fields[f]; bad {
					return m, m.focusField(i)
				}
			}
		}
		return m, nil
	}
	return m, m.dispatchCmd(sub)
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n", "N":
		m.dialogs.CancelDelete()
		return m, nil
	case "y", "Y", "enter":
		sub, err := m.dialogs.ConfirmDelete()
		if err != nil {
			return m, nil
		}
		return m, m.dispatchCmd(sub)
	}
	return m, nil
}

func (m Model) handleRefreshed(msg RefreshedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.WithError(msg.Err).WithField("filter", msg.Key.String()).Debug("list load failed")
	}
	if msg.Key != m.filter {
		return m, nil
	}
	entry := msg.Entry
	if m.engine != nil {
		entry = m.engine.Read(msg.Key)
	}
	m.loading = entry.State == state.StateLoading
	m.applyEntry(entry)
	return m, nil
}

func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	if msg.Sub != nil {
		if msg.Sub.Kind == state.KindDelete {
			m.dialogs.ResolveDelete(*msg.Sub, msg.Result)
		} else {
			m.dialogs.ResolveEdit(*msg.Sub, msg.Result)
			if _, open := m.dialogs.Edit().(form.EditOpen); !open {
				m.blurFields()
			}
		}
	}
	m.toasts = m.notices.Active(m.now(), toastTTL)

	m.log.WithFields(logrus.Fields{
		"kind":   msg.Result.Kind.String(),
		"lab_id": msg.Result.LabID,
		"status": msg.Result.Status.String(),
	}).Debug("mutation finished")

	if !msg.Result.Succeeded() {
		return m, nil
	}
	m.loading = true
	return m, m.fetchCmd(m.filter, false)
}

// Dialog fields

func newFieldInputs() []textinput.Model {
	placeholders := map[form.Field]string{
		form.FieldName:          "Linux Basics",
		form.FieldDescription:   "What the lab teaches",
		form.FieldBaseImage:     "ubuntu:22.04",
		form.FieldEstimatedTime: "minutes",
	}
	inputs := make([]textinput.Model, len(form.Fields))
	for i, f := range form.Fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[f]
		in.CharLimit = 200
		if f == form.FieldEstimatedTime {
			in.CharLimit = 4
		}
		inputs[i] = in
	}
	return inputs
}

// loadFields copies the open draft into the inputs and focuses the first one.
func (m *Model) loadFields() tea.Cmd {
	open, ok := m.dialogs.Edit().(form.EditOpen)
	if !ok {
		return nil
	}
	for i, f := range form.Fields {
		m.fields[i].SetValue(open.Draft.Get(f))
		m.fields[i].CursorEnd()
	}
	return m.focusField(0)
}

func (m *Model) focusField(i int) tea.Cmd {
	n := len(m.fields)
	i = ((i % n) + n) % n
	m.fieldFocus = i
	var cmd tea.Cmd
	for j := range m.fields {
		if j == i {
			cmd = m.fields[j].Focus()
		} else {
			m.fields[j].Blur()
		}
	}
	return cmd
}

func (m *Model) blurFields() {
	for i := range m.fields {
		m.fields[i].Blur()
	}
	m.fieldFocus = 0
}
