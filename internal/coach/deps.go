package coach

import (
	"context"
	"time"

	"github.com/2beens/hyroxcoach/internal/hyrox/athletes"
	"github.com/2beens/hyroxcoach/internal/hyrox/benchmarks"
	"github.com/2beens/hyroxcoach/internal/hyrox/biometrics"
	"github.com/2beens/hyroxcoach/internal/hyrox/library"
	"github.com/2beens/hyroxcoach/internal/hyrox/plans"
	"github.com/2beens/hyroxcoach/internal/hyrox/races"
	"github.com/2beens/hyroxcoach/internal/hyrox/workouts"
	"github.com/2beens/hyroxcoach/internal/knowledge"
	"github.com/2beens/hyroxcoach/internal/readiness"

	"github.com/google/uuid"
)

type retriever interface {
	Retrieve(ctx context.Context, query string, matchCount int) knowledge.Result
}

type workoutsRepo interface {
	Create(ctx context.Context, nl workouts.NewLog) (*workouts.Log, error)
	ListSince(ctx context.Context, athleteID uuid.UUID, since time.Time, limit int) ([]workouts.Log, error)
	Sets(ctx context.Context, athleteID, logID uuid.UUID) ([]workouts.Set, error)
}

type biometricsRepo interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]biometrics.DailyMetric, error)
	Upsert(ctx context.Context, m biometrics.DailyMetric) (*biometrics.DailyMetric, error)
}

type plansRepo interface {
	ActivePlan(ctx context.Context, athleteID uuid.UUID, weekNumber int) (*plans.Plan, error)
	UpdateDay(ctx context.Context, athleteID, dayID uuid.UUID, u plans.DayUpdate) (*plans.Day, error)
}

type benchmarksRepo interface {
	LogBenchmark(ctx context.Context, b benchmarks.Benchmark) (*benchmarks.LogResult, error)
	PersonalRecords(ctx context.Context, athleteID uuid.UUID, recordType string, limit int) ([]benchmarks.PersonalRecord, error)
}

type athletesRepo interface {
	Profile(ctx context.Context, athleteID uuid.UUID) (*athletes.Profile, error)
	CreateGoal(ctx context.Context, g athletes.Goal) (*athletes.Goal, error)
	ActiveGoals(ctx context.Context, athleteID uuid.UUID) ([]athletes.Goal, error)
	Achievements(ctx context.Context, athleteID uuid.UUID) ([]athletes.Achievement, error)
}

type racesRepo interface {
	Results(ctx context.Context, athleteID uuid.UUID, limit int) ([]races.Result, error)
	SkillBenchmarks(ctx context.Context, segmentType, gender string) ([]races.SkillBenchmark, error)
}

type libraryRepo interface {
	FindExercises(ctx context.Context, name string) ([]library.Exercise, error)
	FindStations(ctx context.Context, name string) ([]library.Station, error)
}

type readinessScorer interface {
	Compute(ctx context.Context, athleteID uuid.UUID) (*readiness.Result, error)
}

func today(now func() time.Time) time.Time {
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate parses a YYYY-MM-DD input already checked by validation; empty yields fallback.
func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return time.Parse(time.DateOnly, s)
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
