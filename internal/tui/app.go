package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"curator-cli/internal/clipboard"
	"curator-cli/internal/model"
	"curator-cli/internal/store"
)

// cursorMain is the cursor position for the main-prompt row; cells follow at
// indexes 0..len-1.
const cursorMain = -1

type editTarget int

const (
	editNone editTarget = iota
	editTitle
	editContent
	editPrompt
	editNewProject
)

const confirmWindow = 3 * time.Second

type statusExpiredMsg struct{ at time.Time }

type confirmExpiredMsg struct {
	cellID  int
	project bool
}

type appModel struct {
	store *store.Store
	prefs store.TUIConfig

	width  int
	height int

	cursor int

	// Transient view state, keyed by cell id, never persisted. The whole
	// block is reset on every project switch.
	selected    map[int]bool
	selectMain  bool
	collapsed   map[int]bool
	collapseAll bool

	confirmCellID  int // cell id pending delete confirmation, 0 = none
	confirmProject bool

	editing    editTarget
	editCellID int
	input      textinput.Model
	textarea   textarea.Model

	mdPreview bool

	status   string
	statusAt time.Time

	externalPath      string
	externalCellID    int
	externalForPrompt bool

	// copyFn is swappable in tests.
	copyFn func(string) error
}

func newAppModel(st *store.Store, prefs store.TUIConfig) *appModel {
	in := textinput.New()
	in.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Write…"
	ta.CharLimit = 0
	ta.SetWidth(72)
	ta.SetHeight(10)
	ta.ShowLineNumbers = false

	m := &appModel{
		store:     st,
		prefs:     prefs,
		cursor:    cursorMain,
		input:     in,
		textarea:  ta,
		mdPreview: prefs.MarkdownPreview,
		copyFn:    clipboard.Copy,
	}
	m.resetUIState()
	return m
}

// resetUIState clears everything that is view-only: selection, collapse,
// pending confirmations, in-progress edits. Called on start and on every
// project switch, so stale cell ids from another project can never leak in.
func (m *appModel) resetUIState() {
	m.selected = map[int]bool{}
	m.selectMain = false
	m.collapsed = map[int]bool{}
	m.collapseAll = m.prefs.CollapseCells
	m.confirmCellID = 0
	m.confirmProject = false
	m.editing = editNone
	m.editCellID = 0
	m.input.Blur()
	m.textarea.Blur()
	m.cursor = cursorMain
}

func (m *appModel) project() *model.Project {
	return m.store.CurrentProject()
}

func (m *appModel) cells() []model.Cell {
	if p := m.project(); p != nil {
		return p.Cells
	}
	return nil
}

func (m *appModel) cellAtCursor() (model.Cell, bool) {
	cells := m.cells()
	if m.cursor < 0 || m.cursor >= len(cells) {
		return model.Cell{}, false
	}
	return cells[m.cursor], true
}

func (m *appModel) isCollapsed(id int) bool {
	if v, ok := m.collapsed[id]; ok {
		return v
	}
	return m.collapseAll
}

func (m *appModel) flash(s string) tea.Cmd {
	m.status = s
	at := time.Now()
	m.statusAt = at
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return statusExpiredMsg{at: at}
	})
}

func (m *appModel) Init() tea.Cmd { return nil }
