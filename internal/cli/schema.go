package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"frameloop/netcode/internal/net/proto"
)

// NewSchemaCommand creates the schema command, which prints the JSON schema
// of the peer wire envelope.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "schema",
		Short:         "Print the JSON schema of the wire protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := proto.Schema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
