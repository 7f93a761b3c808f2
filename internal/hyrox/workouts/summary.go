package workouts

import (
	"github.com/montanaflynn/stats"
)

// Summary aggregates a window of workout logs.
type Summary struct {
	Count           int            `json:"count"`
	TotalMinutes    int            `json:"total_minutes"`
	TotalLoad       int            `json:"total_load"`
	TotalDistanceKm float64        `json:"total_distance_km"`
	AvgRPE          *float64       `json:"avg_rpe"`
	ByType          map[string]int `json:"by_type"`
}

// Summarize computes totals over logs. AvgRPE is the mean post-session RPE over the logs
// that recorded one, nil if none did.
func Summarize(logs []Log) Summary {
	s := Summary{
		ByType: make(map[string]int),
	}
	var rpes stats.Float64Data
	for _, l := range logs {
		s.Count++
		s.TotalMinutes += l.DurationMinutes
		s.ByType[l.SessionType]++
		if l.TrainingLoad != nil {
			s.TotalLoad += *l.TrainingLoad
		}
		if l.TotalDistanceKm != nil {
			s.TotalDistanceKm += *l.TotalDistanceKm
		}
		if l.RPEPost != nil {
			rpes = append(rpes, float64(*l.RPEPost))
		}
	}

	if mean, err := rpes.Mean(); err == nil {
		rounded, _ := stats.Round(mean, 2)
		s.AvgRPE = &rounded
	}
	rounded, _ := stats.Round(s.TotalDistanceKm, 2)
	s.TotalDistanceKm = rounded

	return s
}

// MeanPostRPE returns the mean post-session RPE and whether any log recorded one.
func MeanPostRPE(logs []Log) (float64, bool) {
	var rpes stats.Float64Data
	for _, l := range logs {
		if l.RPEPost != nil {
			rpes = append(rpes, float64(*l.RPEPost))
		}
	}
	mean, err := rpes.Mean()
	if err != nil {
		return 0, false
	}
	return mean, true
}
