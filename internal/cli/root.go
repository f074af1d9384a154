// Package cli implements dutyctl, the operator command line for the duty
// service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dutyservice/internal/app"
	"dutyservice/internal/config"
	"dutyservice/internal/logger"
	"dutyservice/internal/types"
)

// DutyService is the part of duty.Service the commands use.
type DutyService interface {
	List(ctx context.Context) types.Result
	Upsert(ctx context.Context, duties []types.Duty) types.Result
}

// Runtime holds the process dependencies of the commands. Tests replace
// them with fakes.
type Runtime struct {
	LoadConfig func(dotenvFiles ...string) (*config.Config, error)
	// Connect bootstraps according to opts and returns the service with a
	// function releasing its resources.
	Connect func(ctx context.Context, cfg *config.Config, opts app.PrepareOptions, log zerolog.Logger) (DutyService, func(), error)
}

// DefaultRuntime wires the real configuration loader and database.
func DefaultRuntime() Runtime {
	return Runtime{
		LoadConfig: config.LoadConfig,
		Connect: func(ctx context.Context, cfg *config.Config, opts app.PrepareOptions, log zerolog.Logger) (DutyService, func(), error) {
			gw, err := app.Prepare(ctx, cfg, opts, log)
			if err != nil {
				return nil, nil, err
			}
			return app.NewService(gw, log), gw.Close, nil
		},
	}
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFiles []string
	Runtime  Runtime
}

// ErrFailedResult marks a command whose operation returned a failed Result.
var ErrFailedResult = errors.New("operation failed")

// NewRootCommand creates the dutyctl root command.
func NewRootCommand(rt Runtime) *cobra.Command {
	opts := &RootOptions{Runtime: rt}

	cmd := &cobra.Command{
		Use:           "dutyctl",
		Short:         "Operate the duty service database",
		Long:          "dutyctl bootstraps the duty database and reads or reconciles duty records from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "dotenv files to load before the environment (default .env if present)")

	cmd.AddCommand(NewBootstrapCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewUpsertCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// load reads the configuration and builds a logger that writes to the
// command's error stream so stdout stays machine-readable.
func (o *RootOptions) load(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := o.Runtime.LoadConfig(o.EnvFiles...)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading configuration: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()).
		With().
		Str("service", "dutyctl").
		Logger()
	return cfg, log, nil
}

// connectReadOnly connects without any bootstrap step.
func (o *RootOptions) connectReadOnly(cmd *cobra.Command) (DutyService, func(), error) {
	cfg, log, err := o.load(cmd)
	if err != nil {
		return nil, nil, err
	}
	return o.Runtime.Connect(cmd.Context(), cfg, app.PrepareOptions{Production: true, SkipSchema: true}, log)
}

// writeResult prints res as JSON and turns a failure into an error.
func writeResult(w io.Writer, res types.Result) error {
	if err := writeJSON(w, res); err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("%w: %s", ErrFailedResult, res.Err.Error())
	}
	return nil
}
