package planner

import (
	"golang.org/x/sync/errgroup"

	"github.com/corpstory/starmap/internal/monitoring"
	"github.com/corpstory/starmap/internal/universe"
)

// Smooth replaces the day-to-day jumps of the rough track with four
// gradually moving boundaries. The tracks are independent and only read the
// rough snapshot, so each runs in its own goroutine.
func Smooth(track []RoughPosition, freeze, horizon int) []universe.Box {
	if len(track) == 0 {
		return nil
	}

	var values [4][]float64
	var g errgroup.Group
	for _, s := range allSides {
		s := s
		values[s] = make([]float64, len(track))
		g.Go(func() error {
			b := NewMovingBound(s, freeze)
			for i := range track {
				values[s][i] = b.Advance(track, i, horizon)
			}
			return nil
		})
	}
	_ = g.Wait() // tracks never fail

	out := make([]universe.Box, len(track))
	moved := 0
	for i := range track {
		for _, s := range allSides {
			s.set(&out[i], values[s][i])
		}
		if out[i] != track[i].Box {
			moved++
		}
	}

	monitoring.Logf("[Smoother] smoothed days=%d differing_from_rough=%d freeze=%d horizon=%d",
		len(track), moved, freeze, horizon)
	return out
}
