package biometrics

import (
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

const (
	DefaultDays = 7
	MaxDays     = 90
)

// DailyMetric is one biometric snapshot per (user, date).
type DailyMetric struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Date           time.Time `json:"date"`
	HRVMs          *float64  `json:"hrv_ms,omitempty"`
	RestingHR      *int      `json:"resting_hr,omitempty"`
	SleepHours     *float64  `json:"sleep_hours,omitempty"`
	StressScore    *int      `json:"stress_score,omitempty"`
	RecoveryScore  *int      `json:"recovery_score,omitempty"`
	ReadinessScore *int      `json:"readiness_score,omitempty"`
	Source         string    `json:"source"`
}

type Averages struct {
	HRVMs      *float64 `json:"hrv_ms"`
	RestingHR  *float64 `json:"resting_hr"`
	SleepHours *float64 `json:"sleep_hours"`
}

// ClampDays bounds a requested window to [1, MaxDays], using DefaultDays for zero or less.
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

// Average computes the mean of each tracked signal over the days that reported it.
func Average(metrics []DailyMetric) Averages {
	var hrv, hr, sleep stats.Float64Data
	for _, m := range metrics {
		if m.HRVMs != nil {
			hrv = append(hrv, *m.HRVMs)
		}
		if m.RestingHR != nil {
			hr = append(hr, float64(*m.RestingHR))
		}
		if m.SleepHours != nil {
			sleep = append(sleep, *m.SleepHours)
		}
	}
	return Averages{
		HRVMs:      mean(hrv),
		RestingHR:  mean(hr),
		SleepHours: mean(sleep),
	}
}

func mean(data stats.Float64Data) *float64 {
	m, err := data.Mean()
	if err != nil {
		return nil
	}
	rounded, err := stats.Round(m, 1)
	if err != nil {
		return nil
	}
	return &rounded
}
