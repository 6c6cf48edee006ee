package app

import (
	"github.com/spf13/cobra"

	configcmd "github.com/emrhub/emr/cmd/emr/cmd/config"
	"github.com/emrhub/emr/cmd/emr/cmd/routes"
	"github.com/emrhub/emr/cmd/emr/cmd/serve"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(serve.NewCommand(a))
	rootCmd.AddCommand(routes.NewCommand(a))
	rootCmd.AddCommand(configcmd.NewCommand(a))
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("emr %s\n", a.version)
			if a.Config().Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
