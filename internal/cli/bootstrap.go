package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dutyservice/internal/app"
)

// BootstrapOptions holds the bootstrap flags.
type BootstrapOptions struct {
	Production bool
	Yes        bool
}

// NewBootstrapCommand creates the bootstrap command.
func NewBootstrapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BootstrapOptions{}

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create missing databases and the duty table",
		Long: `Create the configured databases when they are missing, then make sure
the duty table exists.

Database creation is skipped with --production or when APP_ENV=prod; the
table check always runs. Production targets require typing "yes" unless
--yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Production, "production", false, "treat the target as production and skip database creation")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "skip the production confirmation prompt")

	return cmd
}

func runBootstrap(rootOpts *RootOptions, opts *BootstrapOptions, cmd *cobra.Command) error {
	cfg, log, err := rootOpts.load(cmd)
	if err != nil {
		return err
	}

	production := opts.Production || cfg.IsProduction()
	if production && !opts.Yes {
		ok, err := confirm(cmd, "Bootstrapping a PRODUCTION database. Type 'yes' to continue: ")
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("bootstrap aborted")
		}
	}

	_, closeFn, err := rootOpts.Runtime.Connect(cmd.Context(), cfg, app.PrepareOptions{Production: production}, log)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	closeFn()

	fmt.Fprintln(cmd.OutOrStdout(), "bootstrap complete")
	return nil
}

// confirm prints prompt and reports whether the operator answered "yes".
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return strings.TrimSpace(answer) == "yes", nil
}
