package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newPromptCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Main prompt commands (active project)",
	}
	cmd.AddCommand(newPromptShowCmd(app))
	cmd.AddCommand(newPromptSetCmd(app))
	return cmd
}

func newPromptShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active project's main prompt",
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
			_, err = io.WriteString(cmd.OutOrStdout(), p.MainPrompt)
			return err
		},
	}
}

func newPromptSetCmd(app *App) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "set [text]",
		Short: "Set the active project's main prompt (verbatim, whitespace kept)",
		Long: strings.TrimSpace(`
Set the active project's main prompt. The text is stored verbatim.

The prompt is read from the argument, from --file, or from stdin when neither
is given.
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case len(args) == 1:
				text = args[0]
			case fromFile != "":
				b, err := os.ReadFile(fromFile)
				if err != nil {
					return writeErr(cmd, err)
				}
				text = string(b)
			default:
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, err)
				}
				text = string(b)
			}

			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			if sess.store.CurrentProject() == nil {
				return writeErr(cmd, errors.New("no active project"))
			}
			sess.store.UpdateMainPrompt(text)
			return writeOut(cmd, app, map[string]any{"data": map[string]int{"length": len(text)}})
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "Read the prompt from a file")
	return cmd
}
