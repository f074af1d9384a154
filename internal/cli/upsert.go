package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dutyservice/internal/core"
	"dutyservice/internal/types"
)

type dutyInput struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type upsertInput struct {
	Duties []dutyInput `json:"duties" validate:"required,dive"`
}

// NewUpsertCommand creates the upsert command.
func NewUpsertCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "upsert --file <duties.json>",
		Short: "Reconcile a JSON array of duties",
		Long: `Read a JSON array of {"id", "name"} objects and reconcile it in one
transaction: ids starting with "temp-" are inserted, the others renamed.
The full list is printed afterwards. Use --file - to read stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			duties, err := readDuties(cmd, file)
			if err != nil {
				return err
			}

			svc, closeFn, err := rootOpts.connectReadOnly(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			return writeResult(cmd.OutOrStdout(), svc.Upsert(cmd.Context(), duties))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the JSON array, or - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readDuties(cmd *cobra.Command, file string) ([]types.Duty, error) {
	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening duties file: %w", err)
		}
		defer f.Close()
		r = f
	}

	in := upsertInput{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in.Duties); err != nil {
		return nil, fmt.Errorf("decoding duties: %w", err)
	}
	if err := core.NewValidator().ValidateStruct(in); err != nil {
		return nil, err
	}

	duties := make([]types.Duty, 0, len(in.Duties))
	for _, d := range in.Duties {
		duties = append(duties, types.Duty{ID: d.ID, Name: d.Name})
	}
	return duties, nil
}
