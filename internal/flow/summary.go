package flow

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Summary describes volume behavior over a trailing period, reported next
// to the CVD series so spikes in participation are visible alongside flow.
type Summary struct {
	CurrentVolume  int64   `json:"current_volume"`
	AverageVolume  float64 `json:"average_volume"`
	RelativeVolume float64 `json:"relative_volume"`
	VolumeStdDev   float64 `json:"volume_std_dev"`
	NetCVD         float64 `json:"net_cvd"`
}

// Summarize computes volume statistics over the trailing period points.
// Fewer points than the period uses whatever is available; an empty series
// is an error.
func Summarize(points []Point, period int) (*Summary, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("summarize: empty series")
	}
	if period <= 0 || period > len(points) {
		period = len(points)
	}

	window := points[len(points)-period:]
	volumes := make([]float64, len(window))
	for i, p := range window {
		volumes[i] = float64(p.Volume)
	}

	mean, err := stats.Mean(volumes)
	if err != nil {
		return nil, fmt.Errorf("summarize: mean: %w", err)
	}
	sd, err := stats.StandardDeviation(volumes)
	if err != nil {
		return nil, fmt.Errorf("summarize: stddev: %w", err)
	}

	last := window[len(window)-1]
	summary := &Summary{
		CurrentVolume: last.Volume,
		AverageVolume: mean,
		VolumeStdDev:  sd,
		NetCVD:        last.CVD,
	}
	if mean > 0 {
		summary.RelativeVolume = float64(last.Volume) / mean
	}

	return summary, nil
}
