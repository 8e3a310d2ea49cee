package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/corpstory/starmap/internal/fsutil"
	"github.com/corpstory/starmap/internal/render"
)

func newRenderCmd(root *rootOptions) *cobra.Command {
	var (
		catalogPath, configPath string
		outDir, runID           string
		workers, maxLabels      int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the frames of a stored plan as PNG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := root.openInputs(catalogPath, configPath)
			if err != nil {
				return err
			}
			defer in.db.Close()

			id, err := resolveRun(in.db, runID)
			if err != nil {
				return err
			}
			plan, err := in.db.LoadPlan(id)
			if err != nil {
				return err
			}
			// Events fading in from before the first frame still show.
			fade := in.cfg.GetFadeDays()
			records, err := in.db.Events(plan.FirstDay().AddDays(-fade), plan.LastDay())
			if err != nil {
				return err
			}

			r, err := render.New(fsutil.OSFileSystem{}, in.cat, records, render.Options{
				Surface:      plan.Surface,
				FadeDays:     fade,
				MaxLabels:    maxLabels,
				Workers:      workers,
				FramesPerDay: plan.FramesPerDay,
			})
			if err != nil {
				return err
			}

			n, err := r.RenderAll(cmd.Context(), plan, outDir)
			if err != nil {
				return fmt.Errorf("render failed after %d frames: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %d frames to %s\n", n, outDir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&catalogPath, "catalog", "", "universe catalog YAML")
	f.StringVar(&configPath, "config", "", "planner config JSON (defaults when empty)")
	f.StringVar(&outDir, "out", "frames", "output directory for frame PNGs")
	f.StringVar(&runID, "run", "", "plan run id (latest when empty)")
	f.IntVar(&workers, "workers", 0, "concurrent frame encoders (0 = GOMAXPROCS)")
	f.IntVar(&maxLabels, "max-labels", 0, "rows in the event list (0 = 50)")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

type runLookup interface {
	LatestRunID() (uuid.UUID, error)
}

// resolveRun parses id, or picks the latest stored run when id is empty.
func resolveRun(db runLookup, id string) (uuid.UUID, error) {
	if id == "" {
		return db.LatestRunID()
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	return parsed, nil
}
