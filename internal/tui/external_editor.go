package tui

import (
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"curator-cli/internal/store"
)

type externalEditorDoneMsg struct {
	err error
}

func externalEditorName() string {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("EDITOR")); v != "" {
		return v
	}
	return "vi"
}

// startExternalEdit suspends the TUI and opens $EDITOR on the focused text
// (cell content, or the main prompt when the cursor is on it). The edited
// text is written back through the store when the editor exits.
func (m *appModel) startExternalEdit() (tea.Model, tea.Cmd) {
	p := m.project()
	if p == nil {
		return m, nil
	}

	var before string
	if m.cursor == cursorMain || m.editing == editPrompt {
		before = p.MainPrompt
		m.externalForPrompt = true
		m.externalCellID = 0
	} else {
		cell, ok := m.cellAtCursor()
		if !ok {
			return m, nil
		}
		if m.editing == editContent {
			cell.ID = m.editCellID
		}
		before = cell.Content
		m.externalForPrompt = false
		m.externalCellID = cell.ID
	}
	if m.editing == editContent || m.editing == editPrompt {
		// Carry over any unsaved textarea edits.
		before = m.textarea.Value()
	}
	m.editing = editNone
	m.textarea.Blur()

	f, err := os.CreateTemp("", "curator-cell-*.md")
	if err != nil {
		return m, m.flash("Editor failed: " + err.Error())
	}
	path := f.Name()
	if _, err := f.WriteString(before); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return m, m.flash("Editor failed: " + err.Error())
	}
	_ = f.Close()
	m.externalPath = path

	args := strings.Fields(externalEditorName())
	if len(args) == 0 {
		args = []string{"vi"}
	}
	cmd := exec.Command(args[0], append(args[1:], path)...)
	return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalEditorDoneMsg{err: err}
	})
}

func (m *appModel) applyExternalEditorResult(msg externalEditorDoneMsg) tea.Cmd {
	path := m.externalPath
	m.externalPath = ""
	if path == "" {
		return nil
	}
	defer func() { _ = os.Remove(path) }()

	if msg.err != nil {
		return m.flash("Editor failed: " + msg.err.Error())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return m.flash("Editor failed: " + err.Error())
	}

	text := string(b)
	if m.externalForPrompt {
		m.store.UpdateMainPrompt(text)
	} else {
		m.store.UpdateCell(m.externalCellID, store.CellPatch{Content: &text})
	}
	return m.flash("Saved")
}
