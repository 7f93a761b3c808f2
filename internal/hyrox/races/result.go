package races

import (
	"time"

	"github.com/google/uuid"
)

const (
	SplitRun     = "run"
	SplitStation = "station"
)

type Split struct {
	SplitNumber int    `json:"split_number"`
	SplitType   string `json:"split_type"`
	Name        string `json:"name"`
	TimeSeconds int    `json:"time_seconds"`
	Time        string `json:"time"`
}

type SlowestSegment struct {
	Name        string `json:"name"`
	SplitNumber int    `json:"split_number"`
	TimeSeconds int    `json:"time_seconds"`
	Time        string `json:"time"`
}

type Result struct {
	ID               uuid.UUID       `json:"id"`
	RaceName         string          `json:"race_name"`
	RaceDate         time.Time       `json:"race_date"`
	Location         string          `json:"location,omitempty"`
	Division         string          `json:"division,omitempty"`
	TotalTimeSeconds int             `json:"total_time_seconds"`
	TotalTime        string          `json:"total_time"`
	Notes            string          `json:"notes,omitempty"`
	Splits           []Split         `json:"splits"`
	SlowestStation   *SlowestSegment `json:"slowest_station,omitempty"`
	SlowestRun       *SlowestSegment `json:"slowest_run,omitempty"`
}

// Analyze fills the formatted times and the slowest station and run of the result.
// Ties keep the earliest split.
func (r *Result) Analyze() {
	r.TotalTime = FormatSeconds(r.TotalTimeSeconds)
	r.SlowestStation, r.SlowestRun = nil, nil
	for i := range r.Splits {
		s := &r.Splits[i]
		s.Time = FormatSeconds(s.TimeSeconds)

		var slowest **SlowestSegment
		switch s.SplitType {
		case SplitStation:
			slowest = &r.SlowestStation
		case SplitRun:
			slowest = &r.SlowestRun
		default:
			continue
		}
		if *slowest == nil || s.TimeSeconds > (*slowest).TimeSeconds {
			*slowest = &SlowestSegment{
				Name:        s.Name,
				SplitNumber: s.SplitNumber,
				TimeSeconds: s.TimeSeconds,
				Time:        s.Time,
			}
		}
	}
}
