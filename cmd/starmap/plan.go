package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corpstory/starmap/internal/activity"
	"github.com/corpstory/starmap/internal/fsutil"
	"github.com/corpstory/starmap/internal/monitoring"
	"github.com/corpstory/starmap/internal/planner"
	"github.com/corpstory/starmap/internal/report"
)

const (
	boundsChartName   = "bounds.png"
	timelineChartName = "timeline.html"
)

func newPlanCmd(root *rootOptions) *cobra.Command {
	var catalogPath, configPath, chartsDir string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the camera over the stored events and save the run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := root.openInputs(catalogPath, configPath)
			if err != nil {
				return err
			}
			defer in.db.Close()

			records, err := in.db.AllEvents()
			if err != nil {
				return err
			}

			plan, err := planner.New(in.cfg, in.cat).Plan(activity.Events(records))
			if err != nil {
				return fmt.Errorf("plan failed: %w", err)
			}
			if err := in.db.SavePlan(plan); err != nil {
				return err
			}

			if chartsDir != "" {
				if err := writeCharts(fsutil.OSFileSystem{}, chartsDir, plan); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), plan.RunID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&catalogPath, "catalog", "", "universe catalog YAML")
	f.StringVar(&configPath, "config", "", "planner config JSON (defaults when empty)")
	f.StringVar(&chartsDir, "charts", "", "directory for diagnostic charts")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

// writeCharts writes the bound-track PNG and the timeline HTML. Static plans
// carry no tracks, so only the timeline is written for them.
func writeCharts(fsys fsutil.FileSystem, dir string, plan *planner.Plan) error {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create charts dir: %w", err)
	}

	if report.HasTracks(plan) {
		if err := fsutil.WriteWith(fsys, filepath.Join(dir, boundsChartName), func(w io.Writer) error {
			return report.WriteBoundsPlot(w, plan)
		}); err != nil {
			return fmt.Errorf("write %s: %w", boundsChartName, err)
		}
	} else {
		monitoring.Logf("[Plan] run=%s static plan, skipping %s", plan.RunID, boundsChartName)
	}

	if err := fsutil.WriteWith(fsys, filepath.Join(dir, timelineChartName), func(w io.Writer) error {
		return report.WriteTimeline(w, plan)
	}); err != nil {
		return fmt.Errorf("write %s: %w", timelineChartName, err)
	}
	monitoring.Logf("[Plan] run=%s charts written to %s", plan.RunID, dir)
	return nil
}
