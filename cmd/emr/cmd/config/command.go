// Package config provides the config command for the emr CLI.
package config

import (
	"github.com/spf13/cobra"

	"github.com/emrhub/emr/cmd/application"
	"github.com/emrhub/emr/internal/cmd/output"
)

// NewCommand creates the config command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration resolved from defaults, the config file, .env files,
environment variables and global flags. The API key is masked.`,
		Example: `  emr config
  PORT=8080 emr config -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, app.Config().Redacted())
		},
	}
}
