package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/service"
)

// refreshInterval paces re-reads of the session so batch merges and notice
// expiry show up without a key press.
const refreshInterval = 200 * time.Millisecond

type focus int

const (
	focusNew focus = iota
	focusList
	focusEdit
)

type (
	loadedMsg struct{ err error }
	addedMsg  struct{ err error }
	opDoneMsg struct{ err error }
	editedMsg struct {
		id  int
		err error
	}
	tickMsg time.Time
)

// Model is the bubbletea model over one Session. All mutations run as
// commands so the session's concurrency rules apply unchanged.
type Model struct {
	ctx     context.Context
	session *service.Session

	input textinput.Model
	edit  textinput.Model

	focus  focus
	cursor int
	editID int

	view  service.View
	width int
}

func New(ctx context.Context, session *service.Session) Model {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "What needs to be done?"
	input.CharLimit = 255
	input.Focus()

	edit := textinput.New()
	edit.Prompt = "✎ "
	edit.CharLimit = 255

	m := Model{
		ctx:     ctx,
		session: session,
		input:   input,
		edit:    edit,
		focus:   focusNew,
		width:   80,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	if !m.session.Enabled() {
		return nil
	}
	return tea.Batch(m.loadCmd(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.session.Load(m.ctx)}
	}
}

func (m Model) addCmd(title string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.Add(m.ctx, title)
		return addedMsg{err: err}
	}
}

func (m Model) commitCmd(id int) tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.Editor().Commit(m.ctx, id)
		return editedMsg{id: id, err: err}
	}
}

func (m Model) opCmd(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: fn(m.ctx)}
	}
}

func (m *Model) refresh() {
	m.view = m.session.View()

	if m.cursor >= len(m.view.Rows) {
		m.cursor = len(m.view.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	if m.view.InputDisabled {
		m.input.Blur()
	} else if m.focus == focusNew && !m.input.Focused() {
		m.input.Focus()
	}
}

// selected returns the confirmed record under the cursor.
func (m Model) selected() (domain.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Rows) {
		return domain.Todo{}, false
	}
	row := m.view.Rows[m.cursor]
	if row.IsPending() || row.Todo == nil {
		return domain.Todo{}, false
	}
	return *row.Todo, true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case loadedMsg, opDoneMsg:
		m.refresh()
		return m, nil

	case addedMsg:
		// the input keeps its text when the create failed
		if msg.err == nil {
			m.input.SetValue("")
		}
		m.refresh()
		return m, nil

	case editedMsg:
		m.refresh()
		if m.focus == focusEdit && m.editID == msg.id {
			if st := m.session.Editor().State(msg.id); st.IsEditing() {
				m.edit.SetValue(st.Draft)
			} else {
				m.leaveEdit()
			}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.session.Enabled() {
			if key.Matches(msg, keys.Quit, keys.Cancel) {
				return m, tea.Quit
			}
			return m, nil
		}

		switch m.focus {
		case focusEdit:
			return m.updateEdit(msg)
		case focusNew:
			return m.updateNew(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m Model) updateNew(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Focus):
		m.focus = focusList
		m.input.Blur()
		return m, nil
	case key.Matches(msg, keys.Dismiss):
		m.session.Notifier().Dismiss()
		m.refresh()
		return m, nil
	case key.Matches(msg, keys.Commit):
		if m.view.InputDisabled {
			return m, nil
		}
		return m, m.addCmd(m.input.Value())
	}

	if m.view.InputDisabled {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	batch := m.session.Batch()
	editor := m.session.Editor()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Focus):
		m.focus = focusNew
		m.refresh()
		return m, nil

	case key.Matches(msg, keys.Dismiss):
		m.session.Notifier().Dismiss()

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.view.Rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Toggle):
		if todo, ok := m.selected(); ok {
			return m, m.opCmd(func(ctx context.Context) error { return editor.Toggle(ctx, todo.ID) })
		}

	case key.Matches(msg, keys.Delete):
		if todo, ok := m.selected(); ok {
			return m, m.opCmd(func(ctx context.Context) error { return editor.Delete(ctx, todo.ID) })
		}

	case key.Matches(msg, keys.Edit):
		todo, ok := m.selected()
		if !ok || editor.Activate(todo.ID) != nil {
			return m, nil
		}
		m.focus = focusEdit
		m.editID = todo.ID
		m.edit.SetValue(editor.State(todo.ID).Draft)
		m.edit.CursorEnd()
		m.edit.Focus()

	case key.Matches(msg, keys.ToggleAll):
		if m.view.ToggleAllVisible && !batch.Busy() {
			return m, m.opCmd(func(ctx context.Context) error {
				_, err := m.session.ToggleAll(ctx)
				return err
			})
		}

	case key.Matches(msg, keys.ClearCompleted):
		if m.view.ClearCompletedEnabled {
			return m, m.opCmd(func(ctx context.Context) error {
				_, err := m.session.ClearCompleted(ctx)
				return err
			})
		}

	case key.Matches(msg, keys.FilterAll):
		_ = m.session.SetStatus(domain.StatusAll)
	case key.Matches(msg, keys.FilterActive):
		_ = m.session.SetStatus(domain.StatusActive)
	case key.Matches(msg, keys.FilterDone):
		_ = m.session.SetStatus(domain.StatusCompleted)
	}

	m.refresh()
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	editor := m.session.Editor()

	if editor.State(m.editID).Busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Cancel):
		_ = editor.Cancel(m.editID)
		m.leaveEdit()
		m.refresh()
		return m, nil

	// leaving the field saves, like pressing enter
	case key.Matches(msg, keys.Commit), key.Matches(msg, keys.Focus):
		return m, m.commitCmd(m.editID)
	}

	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	_ = editor.SetDraft(m.editID, m.edit.Value())
	return m, cmd
}

func (m *Model) leaveEdit() {
	m.focus = focusList
	m.editID = 0
	m.edit.Blur()
	m.edit.SetValue("")
}
