package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"curator-cli/internal/store"
)

func Run(st *store.Store, prefs store.TUIConfig) error {
	m := newAppModel(st, prefs)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
