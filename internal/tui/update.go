package tui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"curator-cli/internal/compose"
	"curator-cli/internal/store"
)

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(maxInt(20, m.width-6))
		return m, nil

	case statusExpiredMsg:
		// Only clear if no newer flash replaced this one.
		if msg.at.Equal(m.statusAt) {
			m.status = ""
		}
		return m, nil

	case confirmExpiredMsg:
		if msg.project {
			m.confirmProject = false
		} else if m.confirmCellID == msg.cellID {
			m.confirmCellID = 0
		}
		return m, nil

	case externalEditorDoneMsg:
		return m, m.applyExternalEditorResult(msg)

	case tea.KeyMsg:
		if m.editing != editNone {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m *appModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cells := m.cells()

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > cursorMain {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(cells)-1 {
			m.cursor++
		}

	case " ":
		if m.cursor == cursorMain {
			m.selectMain = !m.selectMain
		} else if cell, ok := m.cellAtCursor(); ok {
			m.selected[cell.ID] = !m.selected[cell.ID]
		}

	case "enter", "c":
		if cell, ok := m.cellAtCursor(); ok {
			m.collapsed[cell.ID] = !m.isCollapsed(cell.ID)
		}

	case "a":
		if cell := m.store.AddCell(); cell != nil {
			m.cursor = len(m.cells()) - 1
			m.collapsed[cell.ID] = false
			return m, m.flash("Added cell " + itoa(cell.ID))
		}

	case "e":
		return m, m.startEdit()

	case "t":
		if cell, ok := m.cellAtCursor(); ok {
			m.editing = editTitle
			m.editCellID = cell.ID
			m.input.Placeholder = "Cell title"
			m.input.SetValue(cell.Title)
			m.input.CursorEnd()
			m.input.Focus()
		}

	case "E":
		return m.startExternalEdit()

	case "d":
		return m.deleteCellKey()

	case "K", "shift+up":
		if cell, ok := m.cellAtCursor(); ok {
			m.store.MoveCell(cell.ID, -1)
			if m.cursor > 0 {
				m.cursor--
			}
		}
	case "J", "shift+down":
		if cell, ok := m.cellAtCursor(); ok {
			m.store.MoveCell(cell.ID, 1)
			if m.cursor < len(m.cells())-1 {
				m.cursor++
			}
		}

	case "n":
		m.editing = editNewProject
		m.input.SetValue("")
		m.input.Placeholder = "Project name"
		m.input.Focus()

	case "p", "tab":
		m.cycleProject()

	case "D":
		return m.deleteProjectKey()

	case "y":
		return m, m.copySelection()

	case "v":
		m.mdPreview = !m.mdPreview

	case "x":
		// Clear selection.
		m.selected = map[int]bool{}
		m.selectMain = false
	}
	return m, nil
}

func (m *appModel) startEdit() tea.Cmd {
	p := m.project()
	if p == nil {
		return nil
	}
	if m.cursor == cursorMain {
		m.editing = editPrompt
		m.textarea.SetValue(p.MainPrompt)
	} else {
		cell, ok := m.cellAtCursor()
		if !ok {
			return nil
		}
		m.editing = editContent
		m.editCellID = cell.ID
		m.textarea.SetValue(cell.Content)
	}
	return m.textarea.Focus()
}

func (m *appModel) deleteCellKey() (tea.Model, tea.Cmd) {
	cell, ok := m.cellAtCursor()
	if !ok {
		return m, nil
	}
	if m.confirmCellID != cell.ID {
		// First press arms the confirmation; it disarms on its own.
		m.confirmCellID = cell.ID
		id := cell.ID
		return m, tea.Tick(confirmWindow, func(time.Time) tea.Msg {
			return confirmExpiredMsg{cellID: id}
		})
	}

	m.confirmCellID = 0
	m.store.DeleteCell(cell.ID)
	delete(m.selected, cell.ID)
	delete(m.collapsed, cell.ID)
	if m.cursor >= len(m.cells()) {
		m.cursor = len(m.cells()) - 1
	}
	return m, m.flash("Deleted cell " + itoa(cell.ID))
}

func (m *appModel) deleteProjectKey() (tea.Model, tea.Cmd) {
	if !m.confirmProject {
		m.confirmProject = true
		return m, tea.Tick(confirmWindow, func(time.Time) tea.Msg {
			return confirmExpiredMsg{project: true}
		})
	}

	m.confirmProject = false
	id := m.store.ActiveProjectID()
	if err := m.store.DeleteProject(id); err != nil {
		var last *store.LastProjectError
		if errors.As(err, &last) {
			return m, m.flash("Cannot delete the last project")
		}
		return m, m.flash(err.Error())
	}
	m.resetUIState()
	return m, m.flash("Deleted project " + id)
}

func (m *appModel) cycleProject() {
	ids := m.store.ProjectIDs()
	if len(ids) < 2 {
		return
	}
	current := m.store.ActiveProjectID()
	next := ids[0]
	for i, id := range ids {
		if id == current {
			next = ids[(i+1)%len(ids)]
			break
		}
	}
	m.store.SwitchProject(next)
	m.resetUIState()
}

func (m *appModel) copySelection() tea.Cmd {
	p := m.project()
	if p == nil {
		return nil
	}
	sel := compose.Selection{MainPrompt: m.selectMain}
	for _, cell := range p.Cells {
		if m.selected[cell.ID] {
			sel.CellIDs = append(sel.CellIDs, cell.ID)
		}
	}
	text := compose.Combined(p, sel)
	if text == "" {
		return m.flash("Nothing selected")
	}
	if err := m.copyFn(text); err != nil {
		return m.flash("Clipboard failed: " + err.Error())
	}
	return m.flash("Copied!")
}

func (m *appModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.editing {
	case editTitle, editNewProject:
		switch msg.String() {
		case "esc":
			m.editing = editNone
			m.input.Blur()
			return m, nil
		case "enter":
			return m.commitInput()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case editContent, editPrompt:
		switch msg.String() {
		case "esc":
			m.editing = editNone
			m.textarea.Blur()
			return m, nil
		case "ctrl+s":
			m.commitTextarea()
			return m, m.flash("Saved")
		case "ctrl+e":
			return m.startExternalEdit()
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) commitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	target := m.editing
	m.editing = editNone
	m.input.Blur()

	switch target {
	case editTitle:
		m.store.UpdateCell(m.editCellID, store.CellPatch{Title: &value})
		return m, nil
	case editNewProject:
		if strings.TrimSpace(value) == "" {
			return m, nil
		}
		id, err := m.store.CreateProject(value)
		if err != nil {
			var dup *store.DuplicateProjectError
			if errors.As(err, &dup) {
				return m, m.flash("A project with a similar name already exists")
			}
			return m, m.flash(err.Error())
		}
		m.resetUIState()
		return m, m.flash("Created project " + id)
	}
	return m, nil
}

func (m *appModel) commitTextarea() {
	value := m.textarea.Value()
	switch m.editing {
	case editPrompt:
		m.store.UpdateMainPrompt(value)
	case editContent:
		m.store.UpdateCell(m.editCellID, store.CellPatch{Content: &value})
	}
	m.editing = editNone
	m.textarea.Blur()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
