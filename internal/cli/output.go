package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// writeErr exists so RunE bodies read symmetrically with writeOut; cobra
// prints the returned error once.
func writeErr(_ *cobra.Command, err error) error {
	return err
}
