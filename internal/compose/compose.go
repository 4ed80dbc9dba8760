// Package compose builds the single text blob the user copies out: the main
// prompt (when selected) followed by the selected cells, each under a
// "--- title ---" divider, in the project's display order.
package compose

import (
	"strings"

	"curator-cli/internal/model"
)

// Selection names what the user ticked. CellIDs is a set; output order always
// follows the project's cell sequence, not the selection order.
type Selection struct {
	MainPrompt bool
	CellIDs    []int
}

func (sel Selection) Empty() bool {
	return !sel.MainPrompt && len(sel.CellIDs) == 0
}

// Combined concatenates the selection. An empty selection (or a selection
// matching nothing) yields "".
func Combined(p *model.Project, sel Selection) string {
	if p == nil {
		return ""
	}

	selected := make(map[int]bool, len(sel.CellIDs))
	for _, id := range sel.CellIDs {
		selected[id] = true
	}

	var b strings.Builder
	if sel.MainPrompt && p.MainPrompt != "" {
		b.WriteString(p.MainPrompt)
	}
	for _, cell := range p.Cells {
		if !selected[cell.ID] {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n--- " + cell.Title + " ---\n")
		} else {
			b.WriteString("--- " + cell.Title + " ---\n")
		}
		b.WriteString(cell.Content)
	}
	return b.String()
}

// Preview returns a one-line truncated preview of text, used when a cell is
// collapsed.
func Preview(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	const max = 50
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}
