package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/hyroxcoach/internal/hyrox/plans"
	"github.com/2beens/hyroxcoach/internal/hyrox/workouts"
	"github.com/2beens/hyroxcoach/internal/telemetry/metrics"
	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=readiness_test

const (
	weekWindowDays  = 7
	monthWindowDays = 30
)

type workoutsRepo interface {
	ListSince(ctx context.Context, athleteID uuid.UUID, since time.Time, limit int) ([]workouts.Log, error)
}

type plansRepo interface {
	ActivePlan(ctx context.Context, athleteID uuid.UUID, weekNumber int) (*plans.Plan, error)
}

// Scorer gathers an athlete's readiness inputs and scores them. Safe for concurrent use.
type Scorer struct {
	workouts workoutsRepo
	plans    plansRepo
	metrics  *metrics.Manager
	now      func() time.Time
}

func NewScorer(workoutsRepo workoutsRepo, plansRepo plansRepo, metricsManager *metrics.Manager) *Scorer {
	return &Scorer{
		workouts: workoutsRepo,
		plans:    plansRepo,
		metrics:  metricsManager,
		now:      time.Now,
	}
}

// WithClock replaces the time source used to place the trailing windows.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Compute scores the athlete from the last 30 days of workouts and the active plan.
// Only data access failures are returned.
func (s *Scorer) Compute(ctx context.Context, athleteID uuid.UUID) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "readiness.compute")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))

	in, err := s.inputs(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	result := Score(*in)
	span.SetAttributes(attribute.Int("score", result.Score))
	span.SetAttributes(attribute.String("weakest", string(result.Weakest)))
	if s.metrics != nil {
		s.metrics.CounterReadinessComputed.Inc()
	}

	return &result, nil
}

func (s *Scorer) inputs(ctx context.Context, athleteID uuid.UUID) (*Inputs, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := today.AddDate(0, 0, -monthWindowDays)
	weekStart := today.AddDate(0, 0, -weekWindowDays)

	month, err := s.workouts.ListSince(ctx, athleteID, monthStart, 0)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	week := make([]workouts.Log, 0, len(month))
	for _, w := range month {
		if !w.Date.Before(weekStart) {
			week = append(week, w)
		}
	}

	plan, err := s.plans.ActivePlan(ctx, athleteID, 0)
	if errors.Is(err, plans.ErrNoActivePlan) {
		plan, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active plan: %w", err)
	}

	return &Inputs{
		WeekWorkouts:  week,
		MonthWorkouts: month,
		Plan:          plan,
	}, nil
}
