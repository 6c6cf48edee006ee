// Package routes provides the routes command for the emr CLI.
package routes

import (
	"github.com/spf13/cobra"

	"github.com/emrhub/emr/cmd/application"
	"github.com/emrhub/emr/internal/cmd/output"
	"github.com/emrhub/emr/internal/server"
)

// NewCommand creates the routes command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes the server answers",
		Long: `List the routes the server answers with their status, content type and body.
Requests for any other path get 404; other methods on these paths get 405.`,
		Example: `  emr routes
  emr routes -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, server.Routes())
		},
	}
}
