package cli

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every duty as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := rootOpts.connectReadOnly(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			return writeResult(cmd.OutOrStdout(), svc.List(cmd.Context()))
		},
	}
}
