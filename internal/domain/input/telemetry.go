package input

import (
	"gonum.org/v1/gonum/stat"

	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// Telemetry summarizes the bounded event history for diagnostics
// surfaces. Intervals are in the event source's time-units, travel in
// distance-units.
type Telemetry struct {
	Events         int            `json:"events"`
	ByType         map[string]int `json:"by_type"`
	MeanInterval   float64        `json:"mean_interval"`
	StdDevInterval float64        `json:"stddev_interval"`
	MeanTravel     float64        `json:"mean_travel"`
	MaxTravel      float64        `json:"max_travel"`
}

// Telemetry computes summary statistics over the current history
func (r *Router) Telemetry() Telemetry {
	hist := r.History()

	t := Telemetry{
		Events: len(hist),
		ByType: make(map[string]int),
	}
	for _, ev := range hist {
		t.ByType[string(ev.Type)]++
	}

	var intervals []float64
	for i := 1; i < len(hist); i++ {
		intervals = append(intervals, float64(hist[i].Timestamp-hist[i-1].Timestamp))
	}
	if len(intervals) > 0 {
		t.MeanInterval = stat.Mean(intervals, nil)
		if len(intervals) > 1 {
			t.StdDevInterval = stat.StdDev(intervals, nil)
		}
	}

	var travels []float64
	var prev *types.Position
	for i := range hist {
		if hist[i].Position == nil {
			continue
		}
		if prev != nil {
			d := distance(*prev, *hist[i].Position)
			travels = append(travels, d)
			if d > t.MaxTravel {
				t.MaxTravel = d
			}
		}
		prev = hist[i].Position
	}
	if len(travels) > 0 {
		t.MeanTravel = stat.Mean(travels, nil)
	}
	return t
}
