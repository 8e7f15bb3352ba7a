package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"todoclient/internal/core/service"
)

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, session *service.Session) error {
	p := tea.NewProgram(New(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
