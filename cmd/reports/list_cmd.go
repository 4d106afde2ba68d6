package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/people-reports/dataset"
	"github.com/warp/people-reports/reporting"
)

func newListCmd() *cobra.Command {
	var scenarios bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports (or demo scenarios with --scenarios)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if scenarios {
				all, err := dataset.Scenarios()
				if err != nil {
					return err
				}
				for _, f := range all {
					fmt.Fprintf(tw, "%s\t%s\n", f.Name, f.Description)
				}
				return nil
			}

			for _, r := range reporting.Catalog() {
				fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&scenarios, "scenarios", false, "List embedded demo scenarios instead")
	return cmd
}
