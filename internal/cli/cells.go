package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"curator-cli/internal/store"
)

func newCellsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cells",
		Short: "Cell commands (all operate on the active project)",
	}
	cmd.AddCommand(newCellsAddCmd(app))
	cmd.AddCommand(newCellsListCmd(app))
	cmd.AddCommand(newCellsSetCmd(app))
	cmd.AddCommand(newCellsDeleteCmd(app))
	cmd.AddCommand(newCellsMoveCmd(app))
	return cmd
}

func parseCellID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid cell id %q", arg)
	}
	return id, nil
}

func newCellsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Append a new empty cell",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			cell := sess.store.AddCell()
			if cell == nil {
				return writeErr(cmd, errors.New("no active project"))
			}
			return writeOut(cmd, app, map[string]any{"data": cell})
		},
	}
}

func newCellsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the active project's cells in display order",
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
			return writeOut(cmd, app, map[string]any{"data": p.Cells})
		},
	}
}

func newCellsSetCmd(app *App) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "set <cell-id>",
		Short: "Update a cell's title and/or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCellID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var patch store.CellPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			}
			if patch.Title == nil && patch.Content == nil {
				return writeErr(cmd, errors.New("nothing to update: pass --title and/or --content"))
			}

			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			sess.store.UpdateCell(id, patch)
			cell, ok := findCell(sess, id)
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "cell %d not found in active project (nothing changed)\n", id)
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": cell})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	return cmd
}

func newCellsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <cell-id>",
		Short: "Delete a cell (its id is never reused)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCellID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			if _, ok := findCell(sess, id); !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "cell %d not found in active project (nothing changed)\n", id)
				return nil
			}
			sess.store.DeleteCell(id)
			return writeOut(cmd, app, map[string]any{"data": map[string]int{"deleted": id}})
		},
	}
}

func newCellsMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <cell-id> <up|down>",
		Short: "Swap a cell with its neighbor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCellID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var direction int
			switch args[1] {
			case "up":
				direction = -1
			case "down":
				direction = 1
			default:
				return writeErr(cmd, fmt.Errorf("direction must be up or down, got %q", args[1]))
			}

			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			sess.store.MoveCell(id, direction)
			p := sess.store.CurrentProject()
			if p == nil {
				return writeErr(cmd, errors.New("no active project"))
			}
			return writeOut(cmd, app, map[string]any{"data": p.Cells})
		},
	}
}

func findCell(sess *session, id int) (any, bool) {
	p := sess.store.CurrentProject()
	if p == nil {
		return nil, false
	}
	for i := range p.Cells {
		if p.Cells[i].ID == id {
			return p.Cells[i], true
		}
	}
	return nil, false
}
