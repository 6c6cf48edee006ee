package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/emrhub/emr/cmd/emr/cmd/serve"
	"github.com/emrhub/emr/internal/config"
	"github.com/emrhub/emr/internal/server"
	"github.com/emrhub/emr/pkg/logging"
)

// Execute runs the emr CLI with the given arguments. Without a subcommand
// the server is started.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "emr",
		Short:   "EMR HTTP server",
		Version: a.version,
		Long: `emr serves the EMR home page and patient page over HTTP.

Run without a subcommand to start the server on PORT (default 5000).`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setupCommand,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve.Run(cmd.Context(), a, cmd.OutOrStdout(), server.FromConfig(a.Config()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	// Global flags. Values are applied in setupCommand so unset flags do
	// not clobber values loaded from the environment.
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./.emr.yaml or $HOME/.emr.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("emr {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	a.mu.Lock()
	defer a.mu.Unlock()

	if configFile := mustGetString(cmd, "config"); configFile != "" {
		opts := append(append([]config.Option{}, a.loadOpts...), config.WithConfigFile(configFile))
		cfg, err := config.Load(opts...)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	// Work on a copy so a config passed in with WithConfig is left alone.
	cfg := *a.config
	cfg.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)
	a.config = &cfg

	if !a.customLogger {
		logger := NewLogger(a.config)
		a.logger = &logger
		logging.SetDefault(logger)
	}

	return nil
}

// ExitOnError prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
