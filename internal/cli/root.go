// Package cli implements the tally command line. The root command opens
// the desktop window; subcommands drive the same controller headlessly.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath   string
	DBPath       string
	StrictDelete bool
	Verbose      bool

	// strictDeleteSet records that --strict-delete was given, in either direction.
	strictDeleteSet bool
}

// GUIFunc runs the desktop front end until the window closes.
type GUIFunc func(app *App) error

// NewRootCommand creates the root command. gui runs when no subcommand is
// given; it may be nil for headless builds.
func NewRootCommand(gui GUIFunc) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "tally",
		Short:         "Tally - a priced item list",
		Long:          "Keep a list of priced items in a local SQLite file with a running total.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.strictDeleteSet = cmd.Flags().Changed("strict-delete")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if gui == nil {
				return cmd.Help()
			}
			app, err := OpenApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()
			return gui(app)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./tally.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.StrictDelete, "strict-delete", false, "report deleting a missing row as an error (overrides config and env)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}
