package coach

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/hyroxcoach/internal/hyrox/biometrics"
	"github.com/2beens/hyroxcoach/internal/hyrox/workouts"

	"github.com/google/uuid"
)

const (
	defaultRecentWorkoutDays  = 14
	defaultRecentWorkoutLimit = 10
)

type createWorkoutLogInput struct {
	Date            string   `json:"date" validate:"required,datetime=2006-01-02" jsonschema:"Session date, YYYY-MM-DD"`
	SessionType     string   `json:"session_type" validate:"required,oneof=run strength hiit station_practice simulation recovery mobility cross_training" jsonschema:"Kind of session"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,min=1,max=600" jsonschema:"Session duration in minutes"`
	RPEPre          *int     `json:"rpe_pre,omitempty" validate:"omitempty,min=1,max=10" jsonschema:"Perceived readiness before the session, 1-10"`
	RPEPost         *int     `json:"rpe_post,omitempty" validate:"omitempty,min=1,max=10" jsonschema:"Perceived exertion after the session, 1-10"`
	TotalVolumeKg   *float64 `json:"total_volume_kg,omitempty" validate:"omitempty,min=0" jsonschema:"Total lifted volume in kg"`
	TotalDistanceKm *float64 `json:"total_distance_km,omitempty" validate:"omitempty,min=0" jsonschema:"Total distance covered in km"`
	TrainingLoad    *int     `json:"training_load,omitempty" validate:"omitempty,min=0,max=1000" jsonschema:"Explicit training load; defaults to duration x rpe_post"`
	Notes           string   `json:"notes,omitempty" validate:"max=2000" jsonschema:"Free-form notes"`
}

type getWorkoutSetsInput struct {
	WorkoutLogID string `json:"workout_log_id" validate:"required,uuid" jsonschema:"Id of one of the athlete's workout logs"`
}

type getRecentWorkoutsInput struct {
	Days  int `json:"days,omitempty" validate:"omitempty,min=1,max=90" jsonschema:"How many days back to look (default 14)"`
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=50" jsonschema:"Maximum number of workouts (default 10)"`
}

type getDailyMetricsInput struct {
	Days int `json:"days,omitempty" validate:"omitempty,min=1,max=90" jsonschema:"How many days back to look (default 7, max 90)"`
}

type logDailyMetricsInput struct {
	Date           string   `json:"date" validate:"required,datetime=2006-01-02" jsonschema:"Metric date, YYYY-MM-DD"`
	HRVMs          *float64 `json:"hrv_ms,omitempty" validate:"omitempty,gt=0,lte=300" jsonschema:"Heart rate variability in ms"`
	RestingHR      *int     `json:"resting_hr,omitempty" validate:"omitempty,min=20,max=150" jsonschema:"Resting heart rate in bpm"`
	SleepHours     *float64 `json:"sleep_hours,omitempty" validate:"omitempty,min=0,max=24" jsonschema:"Hours slept"`
	StressScore    *int     `json:"stress_score,omitempty" validate:"omitempty,min=0,max=100" jsonschema:"Device stress score, 0-100"`
	RecoveryScore  *int     `json:"recovery_score,omitempty" validate:"omitempty,min=0,max=100" jsonschema:"Device recovery score, 0-100"`
	ReadinessScore *int     `json:"readiness_score,omitempty" validate:"omitempty,min=0,max=100" jsonschema:"Device readiness score, 0-100"`
	Source         string   `json:"source,omitempty" validate:"omitempty,max=50" jsonschema:"Where the numbers come from (default manual)"`
}

type WorkoutTools struct {
	workouts   workoutsRepo
	biometrics biometricsRepo
	now        func() time.Time
}

func NewWorkoutTools(workoutsRepo workoutsRepo, biometricsRepo biometricsRepo, now func() time.Time) *WorkoutTools {
	if now == nil {
		now = time.Now
	}
	return &WorkoutTools{
		workouts:   workoutsRepo,
		biometrics: biometricsRepo,
		now:        now,
	}
}

func (w *WorkoutTools) Tools() []Tool {
	return []Tool{
		NewMutationTool(
			"create_workout_log",
			"Logs a completed training session for the athlete. Training load defaults to duration x post-session RPE, capped at 1000.",
			w.createWorkoutLog,
		),
		NewTool(
			"get_workout_sets",
			"Returns the individual sets of one of the athlete's workout logs.",
			w.getWorkoutSets,
		),
		NewTool(
			"get_recent_workouts",
			"Lists the athlete's recent workouts with a summary of minutes, load and session types.",
			w.getRecentWorkouts,
		),
		NewTool(
			"get_daily_metrics",
			"Returns daily recovery metrics (HRV, resting heart rate, sleep) with averages over the window.",
			w.getDailyMetrics,
		),
		NewMutationTool(
			"log_daily_metrics",
			"Records or replaces the athlete's recovery metrics for one day.",
			w.logDailyMetrics,
		),
	}
}

func (w *WorkoutTools) createWorkoutLog(ctx context.Context, c Call, in createWorkoutLogInput) Result {
	date, err := parseDate(in.Date, today(w.now))
	if err != nil {
		return c.Failure("Invalid workout date.", nil)
	}

	created, err := w.workouts.Create(ctx, workouts.NewLog{
		AthleteID:       c.AthleteID,
		Date:            date,
		SessionType:     in.SessionType,
		DurationMinutes: in.DurationMinutes,
		RPEPre:          in.RPEPre,
		RPEPost:         in.RPEPost,
		TrainingLoad:    workouts.TrainingLoadFor(in.DurationMinutes, in.RPEPost, in.TrainingLoad),
		TotalVolumeKg:   in.TotalVolumeKg,
		TotalDistanceKm: in.TotalDistanceKm,
		Notes:           in.Notes,
	})
	if err != nil {
		return c.Failure("Failed to save workout.", err)
	}

	return Success("workout", created)
}

func (w *WorkoutTools) getWorkoutSets(ctx context.Context, c Call, in getWorkoutSetsInput) Result {
	logID, err := uuid.Parse(in.WorkoutLogID)
	if err != nil {
		return Result{"sets": []workouts.Set{}, "message": "Workout not found."}
	}

	sets, err := w.workouts.Sets(ctx, c.AthleteID, logID)
	if errors.Is(err, workouts.ErrWorkoutNotFound) {
		return Result{"sets": []workouts.Set{}, "message": "Workout not found."}
	}
	if err != nil {
		return c.ReadFailure("fetch workout sets", err)
	}

	out := Result{"sets": sets}
	if len(sets) == 0 {
		out["sets"] = []workouts.Set{}
		out["message"] = "No sets recorded for this workout."
	}
	return out
}

func (w *WorkoutTools) getRecentWorkouts(ctx context.Context, c Call, in getRecentWorkoutsInput) Result {
	days := in.Days
	if days == 0 {
		days = defaultRecentWorkoutDays
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultRecentWorkoutLimit
	}

	since := today(w.now).AddDate(0, 0, -days)
	logs, err := w.workouts.ListSince(ctx, c.AthleteID, since, limit)
	if err != nil {
		return c.ReadFailure("fetch recent workouts", err)
	}

	out := Result{
		"workouts": logs,
		"summary":  workouts.Summarize(logs),
		"days":     days,
	}
	if len(logs) == 0 {
		out["workouts"] = []workouts.Log{}
		out["message"] = "No workouts logged in this period."
	}
	return out
}

func (w *WorkoutTools) getDailyMetrics(ctx context.Context, c Call, in getDailyMetricsInput) Result {
	days := biometrics.ClampDays(in.Days)
	since := today(w.now).AddDate(0, 0, -days)

	metrics, err := w.biometrics.ListSince(ctx, c.UserID, since)
	if err != nil {
		return c.ReadFailure("fetch daily metrics", err)
	}

	out := Result{
		"metrics":  metrics,
		"averages": biometrics.Average(metrics),
		"days":     days,
	}
	if len(metrics) == 0 {
		out["metrics"] = []biometrics.DailyMetric{}
		out["message"] = "No daily metrics recorded in this period."
	}
	return out
}

func (w *WorkoutTools) logDailyMetrics(ctx context.Context, c Call, in logDailyMetricsInput) Result {
	date, err := parseDate(in.Date, today(w.now))
	if err != nil {
		return c.Failure("Invalid metrics date.", nil)
	}

	saved, err := w.biometrics.Upsert(ctx, biometrics.DailyMetric{
		UserID:         c.UserID,
		Date:           date,
		HRVMs:          in.HRVMs,
		RestingHR:      in.RestingHR,
		SleepHours:     in.SleepHours,
		StressScore:    in.StressScore,
		RecoveryScore:  in.RecoveryScore,
		ReadinessScore: in.ReadinessScore,
		Source:         in.Source,
	})
	if err != nil {
		return c.Failure("Failed to save daily metrics.", err)
	}

	return Success("metrics", saved)
}
