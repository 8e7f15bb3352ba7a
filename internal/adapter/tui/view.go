package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/service"
)

const guidance = `No user id is configured.

Set TODO_USER_ID (or user_id in the config file) to the id of the
collection you want to work on and start the client again.`

func (m Model) View() string {
	if !m.session.Enabled() {
		return panelString(titleStyle.Render("todos") + "\n\n" + guidance + "\n\n" + helpStyle.Render("q quit"))
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("todos"))
	b.WriteString("\n\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.view.ListVisible {
		for i, row := range m.view.Rows {
			b.WriteString(m.renderRow(i, row))
			b.WriteString("\n")
		}
	}

	if m.view.FooterVisible {
		b.WriteString("\n")
		b.WriteString(renderFooter(m.view))
		b.WriteString("\n")
	}

	if n := m.view.Notice; n != nil {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(n.Message + "  ×"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return panelString(b.String())
}

func (m Model) renderHeader() string {
	toggle := " "
	if m.view.ToggleAllVisible {
		toggle = mutedStyle.Render("❯")
		if m.view.AllCompleted {
			toggle = successStyle.Render("❯")
		}
	}

	input := m.input.View()
	if m.view.InputDisabled {
		input = mutedStyle.Render(m.input.Prompt+m.input.Value()) + " " + accentStyle.Render(loader)
	}

	return toggle + " " + input
}

func (m Model) renderRow(index int, row domain.Row) string {
	box := mutedStyle.Render(boxUnchecked)
	if row.Completed() {
		box = successStyle.Render(boxChecked)
	}

	var text string
	switch {
	case !row.IsPending() && row.Editor.IsEditing() && m.focus == focusEdit && row.Todo.ID == m.editID:
		text = m.edit.View()
	case row.Completed():
		text = doneStyle.Render(row.Title())
	default:
		text = row.Title()
	}

	line := fmt.Sprintf("%s %s", box, text)
	if row.Editor.Busy {
		line += " " + accentStyle.Render(loader)
	}

	prefix := "  "
	if index == m.cursor && m.focus != focusNew && !row.IsPending() {
		prefix = selectedStyle.Render(">") + " "
	}
	return prefix + line
}

func renderFooter(v service.View) string {
	filters := make([]string, 0, len(domain.Statuses))
	for _, status := range domain.Statuses {
		label := string(status)
		if status == v.Status {
			label = selectedStyle.Render(label)
		} else {
			label = mutedStyle.Render(label)
		}
		filters = append(filters, label)
	}

	clearLabel := mutedStyle.Render("Clear completed")
	if v.ClearCompletedEnabled {
		clearLabel = accentStyle.Render("Clear completed")
	}

	return fmt.Sprintf("%s   %s   %s", v.ItemsLeft(), strings.Join(filters, " "), clearLabel)
}

func (m Model) renderHelp() string {
	var bindings []key.Binding

	switch m.focus {
	case focusEdit:
		bindings = []key.Binding{keys.Commit, keys.Cancel}
	case focusNew:
		bindings = []key.Binding{keys.Commit, keys.Focus}
	default:
		bindings = keys.listHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}
