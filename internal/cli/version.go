package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dutyservice/internal/config"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := config.NewBuildInfo()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "dutyctl %s (commit %s, built %s)\n", b.Version, b.Commit, b.BuildTime)
			return err
		},
	}
}
