package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"curator-cli/internal/model"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsSwitchCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project and make it active",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			id, err := sess.store.CreateProject(name)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": projectView(id, sess.store.Document().Projects[id], id)})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

type projectListEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Cells        int    `json:"cells"`
	Active       bool   `json:"active"`
	Created      int64  `json:"created"`
	LastModified int64  `json:"lastModified"`
}

func projectView(id string, p *model.Project, activeID string) projectListEntry {
	return projectListEntry{
		ID:           id,
		Name:         p.Name,
		Cells:        len(p.Cells),
		Active:       id == activeID,
		Created:      p.Created,
		LastModified: p.LastModified,
	}
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			doc := sess.store.Document()
			out := make([]projectListEntry, 0, len(doc.Projects))
			for id, p := range doc.Projects {
				out = append(out, projectView(id, p, doc.ActiveProject))
			}
			sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newProjectsSwitchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <project-id>",
		Short: "Make a project active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			sess.store.SwitchProject(args[0])
			// Unknown ids are a store no-op; report what is actually active.
			return writeOut(cmd, app, map[string]any{"data": map[string]string{
				"activeProject": sess.store.ActiveProjectID(),
			}})
		},
	}
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project (the last one cannot be deleted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			if err := sess.store.DeleteProject(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{
				"deleted":       args[0],
				"activeProject": sess.store.ActiveProjectID(),
			}})
		},
	}
}
