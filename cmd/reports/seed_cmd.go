package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/people-reports/dataset"
)

type seedOutput struct {
	Dataset   string `json:"dataset"`
	Locations int    `json:"locations"`
	Roles     int    `json:"roles"`
	People    int    `json:"people"`
}

func newSeedCmd(flags *connFlags) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load a YAML dataset into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dataset.ParseFile(args[0])
			if err != nil {
				return err
			}

			backend, log, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			loaded, err := loadFile(cmd.Context(), backend, f, reset)
			if err != nil {
				return fmt.Errorf("seed %s: %w", args[0], err)
			}
			log.Info().Str("dataset", f.Name).Int("people", len(loaded.People)).Msg("dataset loaded")

			return writeJSON(cmd.OutOrStdout(), seedOutput{
				Dataset:   f.Name,
				Locations: len(loaded.Locations),
				Roles:     len(loaded.Roles),
				People:    len(loaded.People),
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Delete existing data first")
	return cmd
}
