package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corpstory/starmap/internal/activity"
	"github.com/corpstory/starmap/internal/db"
	"github.com/corpstory/starmap/internal/monitoring"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an activity CSV into the event store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open CSV: %w", err)
			}
			defer f.Close()

			records, err := activity.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", csvPath, err)
			}

			database, err := db.NewDB(root.dbPath)
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := database.InsertEvents(records)
			if err != nil {
				return err
			}
			total, err := database.CountEvents()
			if err != nil {
				return err
			}
			monitoring.Logf("[Import] file=%s inserted=%d total=%d", csvPath, n, total)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d events (%d stored)\n", n, total)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "activity CSV file (date,category,system_id,label[,payload])")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
