// Package cli implements the labctl command line on top of the same sync
// engine and form controller the TUI uses.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/labctl/labctl/internal/app"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	apiBaseURL string
	logLevel   string
	prefsPath  string
}

func (g *globals) options() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		APIBaseURL: g.apiBaseURL,
		LogLevel:   g.logLevel,
	}
}

func (g *globals) runtime() (*app.Runtime, error) {
	return app.Bootstrap(g.options())
}

// NewRootCommand builds the labctl command tree. Without a subcommand it
// starts the interactive UI.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "labctl",
		Short:         "Manage lab templates from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), g.options())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "path to config.toml (default ~/.config/labctl/config.toml)")
	flags.StringVar(&g.apiBaseURL, "api", "", "lab service base URL (overrides config)")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&g.prefsPath, "prefs", "", "path to prefs.toml (default ~/.config/labctl/prefs.toml)")

	root.AddCommand(
		newTUICommand(g),
		newListCommand(g),
		newGetCommand(g),
		newCreateCommand(g),
		newUpdateCommand(g),
		newDeleteCommand(g),
		newToggleCommand(g),
		newLogsCommand(g),
	)
	return root
}

func newTUICommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive lab browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), g.options())
		},
	}
}
