package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/people-reports/dataset"
	"github.com/warp/people-reports/reporting"
)

type runOutput struct {
	Report     string `json:"report"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

func newRunCmd(flags *connFlags) *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "run <report>",
		Short: "Run one report, or every report with \"all\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := reporting.Catalog()
			if args[0] != "all" {
				r, err := reporting.Lookup(args[0])
				if err != nil {
					return err
				}
				reports = []reporting.Report{r}
			}

			backend, _, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			ctx := cmd.Context()
			if scenario != "" {
				f, err := dataset.Scenario(scenario)
				if err != nil {
					return err
				}
				if _, err := loadFile(ctx, backend, f, true); err != nil {
					return fmt.Errorf("load scenario %s: %w", scenario, err)
				}
			}

			out := make([]runOutput, 0, len(reports))
			for _, r := range reports {
				start := time.Now()
				result, err := r.Run(ctx, backend.Reports)
				if err != nil {
					return err
				}
				out = append(out, runOutput{
					Report:     r.Name,
					DurationMS: time.Since(start).Milliseconds(),
					Result:     result,
				})
			}

			if len(out) == 1 {
				return writeJSON(cmd.OutOrStdout(), out[0])
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Replace the data with an embedded scenario first")
	return cmd
}
