// Package cli implements the frameloop command tree.
package cli

import (
	"github.com/spf13/cobra"

	"frameloop/netcode/internal/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Config  string
	Verbose bool
}

// Session returns the session settings from the configured file, or the
// defaults when no file was given.
func (o *RootOptions) Session() (config.Config, error) {
	if o.Config == "" {
		return config.Default(), nil
	}
	return config.Load(o.Config)
}

// NewRootCommand creates the root command for the frameloop CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "frameloop",
		Short: "Rollback session tooling",
		Long:  "Tools for exercising and verifying deterministic rollback sessions.",
	}

	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSyncTestCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}
