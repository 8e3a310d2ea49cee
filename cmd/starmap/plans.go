package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/corpstory/starmap/internal/db"
)

func newPlansCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List stored plan runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.NewDB(root.dbPath)
			if err != nil {
				return err
			}
			defer database.Close()

			runs, err := database.PlanRuns()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no plan runs stored")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tCREATED\tFIRST\tLAST\tSURFACE\tFPS\tMODE")
			for _, r := range runs {
				mode := "dynamic"
				if !r.Dynamic {
					mode = "static"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%dx%d\t%d\t%s\n",
					r.RunID, r.Created.Format("2006-01-02 15:04:05"), r.FirstDay, r.LastDay,
					r.Surface.Width, r.Surface.Height, r.FramesPerDay, mode)
			}
			return tw.Flush()
		},
	}
}
