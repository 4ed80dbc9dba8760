package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"curator-cli/internal/clipboard"
	"curator-cli/internal/compose"
)

func newCopyCmd(app *App) *cobra.Command {
	var (
		withMain bool
		cellsCSV string
		all      bool
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Concatenate a selection and copy it to the clipboard",
		Long: strings.TrimSpace(`
Concatenate the active project's main prompt (with --main) and the named cells
into one text blob and put it on the system clipboard. Cells appear in display
order under "--- title ---" dividers.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			p := sess.store.CurrentProject()
			if p == nil {
				return writeErr(cmd, errors.New("no active project"))
			}

			sel := compose.Selection{MainPrompt: withMain || all}
			if all {
				for _, c := range p.Cells {
					sel.CellIDs = append(sel.CellIDs, c.ID)
				}
			} else if cellsCSV != "" {
				for _, part := range strings.Split(cellsCSV, ",") {
					part = strings.TrimSpace(part)
					if part == "" {
						continue
					}
					id, err := strconv.Atoi(part)
					if err != nil {
						return writeErr(cmd, fmt.Errorf("invalid cell id %q", part))
					}
					sel.CellIDs = append(sel.CellIDs, id)
				}
			}

			if sel.Empty() {
				return writeErr(cmd, errors.New("nothing selected: pass --main, --cells or --all"))
			}

			text := compose.Combined(p, sel)
			if text == "" {
				return writeErr(cmd, errors.New("selection matched nothing"))
			}

			if toStdout {
				_, err := io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			if err := clipboard.Copy(text); err != nil {
				return writeErr(cmd, fmt.Errorf("clipboard unavailable: %w (use --stdout)", err))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "copied %d bytes to clipboard\n", len(text))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withMain, "main", false, "Include the main prompt")
	cmd.Flags().StringVar(&cellsCSV, "cells", "", "Comma-separated cell ids to include")
	cmd.Flags().BoolVar(&all, "all", false, "Include the main prompt and every cell")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write to stdout instead of the clipboard")
	return cmd
}
