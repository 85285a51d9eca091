package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/labctl/labctl/internal/form"
	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/notify"
	"github.com/labctl/labctl/internal/prefs"
	"github.com/labctl/labctl/internal/state"
	"github.com/labctl/labctl/internal/view"
)

const (
	toastTTL      = 4 * time.Second
	toastInterval = 500 * time.Millisecond
)

// Backend is the part of *state.Engine the UI talks to.
type Backend interface {
	form.Mutator
	SetFilter(key labapi.FilterKey)
	Read(key labapi.FilterKey) state.Entry
	Fetch(ctx context.Context, key labapi.FilterKey) (state.Entry, error)
	Refresh(ctx context.Context, key labapi.FilterKey) (state.Entry, error)
	Toggle(ctx context.Context, id string) state.Mutation
	IsPending(id string) bool
}

var _ Backend = (*state.Engine)(nil)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Engine     Backend
	Notices    *notify.Queue
	Log        logrus.FieldLogger
	ThemeName  string
	Filter     labapi.FilterKey
	PrefsPath  string
	APIBaseURL string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	engine     Backend
	notices    *notify.Queue
	log        logrus.FieldLogger
	prefsPath  string
	apiBaseURL string
	now        func() time.Time

	// UI state
	keys     keyMap
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	help     help.Model
	spinner  spinner.Model

	// Data state
	filter      labapi.FilterKey
	entry       state.Entry
	loading     bool
	lastUpdated time.Time

	// Derived list state
	list     view.Model
	page     view.Page
	selected int

	// Search box
	search    textinput.Model
	searching bool

	// Dialogs
	dialogs    form.Controller
	fields     []textinput.Model
	fieldFocus int

	toasts []notify.Notification
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	notices := opts.Notices
	if notices == nil {
		notices = &notify.Queue{}
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search name or description"
	search.CharLimit = 120

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:        ctx,
		engine:     opts.Engine,
		notices:    notices,
		log:        log,
		prefsPath:  prefsPath,
		apiBaseURL: opts.APIBaseURL,
		now:        time.Now,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(opts.ThemeName),
		help:       help.New(),
		spinner:    sp,
		filter:     opts.Filter,
		search:     search,
		fields:     newFieldInputs(),
	}
	if m.engine != nil {
		m.engine.SetFilter(m.filter)
		m.applyEntry(m.engine.Read(m.filter))
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchCmd(m.filter, false),
		m.spinner.Tick,
		toastTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case RefreshedMsg:
		return m.handleRefreshed(msg)

	case mutationMsg:
		return m.handleMutation(msg)

	case toastTickMsg:
		m.toasts = m.notices.Active(m.now(), toastTTL)
		return m, toastTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if _, ok := m.dialogs.Edit().(form.EditOpen); ok {
		return m.renderEditDialog()
	}
	if _, ok := m.dialogs.Delete().(form.DeleteOpen); ok {
		return m.renderDeleteDialog()
	}
	return m.renderMain()
}

// applyEntry swaps in a new snapshot for the active filter and re-derives the
// visible page, clamping the current page if the list shrank.
func (m *Model) applyEntry(entry state.Entry) {
	m.entry = entry
	if entry.State == state.StateFresh {
		m.lastUpdated = entry.UpdatedAt
	}
	m.page = m.list.Handle(view.SnapshotChanged{Labs: entry.Labs})
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.page.Rows) {
		m.selected = len(m.page.Rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) selectedLab() (labapi.Lab, bool) {
	if m.selected < 0 || m.selected >= len(m.page.Rows) {
		return labapi.Lab{}, false
	}
	return m.page.Rows[m.selected], true
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, StatusFilter: m.filter.String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.WithError(err).Warn("save prefs failed")
	}
}

// Messages

// RefreshedMsg carries the outcome of a list load for Key.
type RefreshedMsg struct {
	Key   labapi.FilterKey
	Entry state.Entry
	Err   error
}

// mutationMsg carries a finished mutation. Sub is nil for toggles, which
// have no dialog.
type mutationMsg struct {
	Sub    *form.Submission
	Result state.Mutation
}

type toastTickMsg time.Time

// Commands

func (m Model) fetchCmd(key labapi.FilterKey, force bool) tea.Cmd {
	if m.engine == nil {
		return nil
	}
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		var (
			entry state.Entry
			err   error
		)
		if force {
			entry, err = engine.Refresh(ctx, key)
		} else {
			entry, err = engine.Fetch(ctx, key)
		}
		return RefreshedMsg{Key: key, Entry: entry, Err: err}
	}
}

func (m Model) dispatchCmd(sub form.Submission) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		return mutationMsg{Sub: &sub, Result: sub.Dispatch(ctx, engine)}
	}
}

func (m Model) toggleCmd(id string) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		return mutationMsg{Result: engine.Toggle(ctx, id)}
	}
}

func toastTickCmd() tea.Cmd {
	return tea.Tick(toastInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// NewProgram builds the Bubble Tea program for opts.
func NewProgram(opts Options) *tea.Program {
	return tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(opts.Context))
}
