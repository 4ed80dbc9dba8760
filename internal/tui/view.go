package tui

import (
	"strings"

	"curator-cli/internal/compose"
	"curator-cli/internal/model"
)

func (m *appModel) View() string {
	p := m.project()
	if p == nil {
		return "No active project.\n\nPress n to create one, q to quit.\n"
	}

	var b strings.Builder
	b.WriteString(m.viewHeader(p))
	b.WriteString("\n")
	b.WriteString(m.viewMainPrompt(p))
	for i, cell := range p.Cells {
		b.WriteString(m.viewCell(cell, i))
	}
	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m *appModel) viewHeader(p *model.Project) string {
	ids := m.store.ProjectIDs()
	var tabs []string
	for _, id := range ids {
		if id == m.store.ActiveProjectID() {
			tabs = append(tabs, styleHeader.Render("["+id+"]"))
		} else {
			tabs = append(tabs, styleChrome.Render(id))
		}
	}

	title := styleHeader.Render(p.Name)
	if m.confirmProject {
		title += "  " + styleConfirm.Render("press D again to delete this project")
	}
	return title + "\n" + styleChrome.Render("projects: ") + strings.Join(tabs, "  ") + "\n"
}

func (m *appModel) viewMainPrompt(p *model.Project) string {
	row := m.rowPrefix(cursorMain, m.selectMain) + styleHeader.Render("Main Prompt")

	if m.editing == editPrompt {
		return row + "\n" + styleCellBody.Render(m.textarea.View()) + "\n" +
			styleChrome.Render("      esc cancel · ctrl+s save · ctrl+e $EDITOR") + "\n"
	}

	if p.MainPrompt == "" {
		return row + stylePreview.Render("  (empty, press e to edit)") + "\n"
	}
	return row + "\n" + styleCellBody.Render(m.renderBody(p.MainPrompt)) + "\n"
}

func (m *appModel) viewCell(cell model.Cell, index int) string {
	row := m.rowPrefix(index, m.selected[cell.ID]) + cell.Title +
		styleChrome.Render("  #"+itoa(cell.ID))

	if m.confirmCellID == cell.ID {
		row += "  " + styleConfirm.Render("press d again to delete")
	}

	if m.editing == editTitle && m.editCellID == cell.ID {
		return m.rowPrefix(index, m.selected[cell.ID]) + m.input.View() + "\n"
	}
	if m.editing == editContent && m.editCellID == cell.ID {
		return row + "\n" + styleCellBody.Render(m.textarea.View()) + "\n" +
			styleChrome.Render("      esc cancel · ctrl+s save · ctrl+e $EDITOR") + "\n"
	}

	if m.isCollapsed(cell.ID) {
		return row + "  " + stylePreview.Render(compose.Preview(cell.Content)) + "\n"
	}
	if cell.Content == "" {
		return row + stylePreview.Render("  (empty)") + "\n"
	}
	return row + "\n" + styleCellBody.Render(m.renderBody(cell.Content)) + "\n"
}

func (m *appModel) renderBody(text string) string {
	if m.mdPreview {
		return renderMarkdown(text, maxInt(20, m.width-10))
	}
	return text
}

func (m *appModel) rowPrefix(index int, selected bool) string {
	cursor := "  "
	if m.cursor == index {
		cursor = styleCursor.Render("> ")
	}
	check := "[ ] "
	if selected {
		check = styleChecked.Render("[x] ")
	}
	return cursor + check
}

func (m *appModel) viewFooter() string {
	if m.editing == editNewProject {
		return "New project: " + m.input.View() + "\n" +
			styleChrome.Render("enter create · esc cancel") + "\n"
	}
	if m.status != "" {
		return styleStatus.Render(m.status) + "\n"
	}
	help := "space select · y copy · a add · e edit · t title · E $EDITOR · d delete · J/K move · " +
		"c collapse · p project · n new · D delete project · v markdown · q quit"
	return styleDivider.Render(help) + "\n"
}
