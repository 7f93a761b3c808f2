package workouts

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionRun             = "run"
	SessionStrength        = "strength"
	SessionHIIT            = "hiit"
	SessionStationPractice = "station_practice"
	SessionSimulation      = "simulation"
	SessionRecovery        = "recovery"
	SessionMobility        = "mobility"
	SessionCrossTraining   = "cross_training"
)

// SessionTypes is the closed set of session types a workout log may carry.
var SessionTypes = []string{
	SessionRun,
	SessionStrength,
	SessionHIIT,
	SessionStationPractice,
	SessionSimulation,
	SessionRecovery,
	SessionMobility,
	SessionCrossTraining,
}

// MaxTrainingLoad caps the session load (duration x RPE) stored on a log.
const MaxTrainingLoad = 1000

type Log struct {
	ID              uuid.UUID `json:"id"`
	AthleteID       uuid.UUID `json:"athlete_id"`
	Date            time.Time `json:"date"`
	SessionType     string    `json:"session_type"`
	DurationMinutes int       `json:"duration_minutes"`
	RPEPre          *int      `json:"rpe_pre,omitempty"`
	RPEPost         *int      `json:"rpe_post,omitempty"`
	TrainingLoad    *int      `json:"training_load,omitempty"`
	TotalVolumeKg   *float64  `json:"total_volume_kg,omitempty"`
	TotalDistanceKm *float64  `json:"total_distance_km,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type Set struct {
	ID              uuid.UUID  `json:"id"`
	WorkoutLogID    uuid.UUID  `json:"workout_log_id"`
	ExerciseID      *uuid.UUID `json:"exercise_id,omitempty"`
	ExerciseName    string     `json:"exercise_name"`
	SetNumber       int        `json:"set_number"`
	Reps            *int       `json:"reps,omitempty"`
	WeightKg        *float64   `json:"weight_kg,omitempty"`
	DistanceM       *float64   `json:"distance_m,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// TrainingLoadFor returns the explicit load when given, otherwise duration x post-session RPE.
// The result is clamped to [0, MaxTrainingLoad]; nil when neither input allows a value.
func TrainingLoadFor(durationMinutes int, rpePost, explicit *int) *int {
	var load int
	switch {
	case explicit != nil:
		load = *explicit
	case rpePost != nil:
		load = durationMinutes * *rpePost
	default:
		return nil
	}
	if load < 0 {
		load = 0
	}
	if load > MaxTrainingLoad {
		load = MaxTrainingLoad
	}
	return &load
}
