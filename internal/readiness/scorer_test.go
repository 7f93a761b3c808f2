package readiness_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/hyroxcoach/internal/hyrox/plans"
	"github.com/2beens/hyroxcoach/internal/hyrox/workouts"
	"github.com/2beens/hyroxcoach/internal/readiness"
	"github.com/2beens/hyroxcoach/internal/telemetry/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScorer_Compute(t *testing.T) {
	ctrl := gomock.NewController(t)
	workoutsRepo := NewMockworkoutsRepo(ctrl)
	plansRepo := NewMockplansRepo(ctrl)
	metricsManager := metrics.NewTestManager()
	athleteID := uuid.New()

	now := time.Date(2026, time.October, 15, 17, 45, 0, 0, time.UTC)
	scorer := readiness.NewScorer(workoutsRepo, plansRepo, metricsManager).
		WithClock(func() time.Time { return now })

	rpe := 6
	month := []workouts.Log{
		{Date: day(2026, time.October, 14), SessionType: workouts.SessionRun, DurationMinutes: 60, RPEPost: &rpe},
		{Date: day(2026, time.October, 8), SessionType: workouts.SessionSimulation, DurationMinutes: 90, RPEPost: &rpe},
		// outside the trailing week
		{Date: day(2026, time.October, 7), SessionType: workouts.SessionRun, DurationMinutes: 45},
		{Date: day(2026, time.September, 20), SessionType: workouts.SessionHIIT, DurationMinutes: 40},
	}

	workoutsRepo.EXPECT().
		ListSince(gomock.Any(), athleteID, day(2026, time.September, 15), 0).
		Return(month, nil)
	plansRepo.EXPECT().
		ActivePlan(gomock.Any(), athleteID, 0).
		Return(&plans.Plan{Weeks: []plans.Week{{Days: []plans.Day{{IsCompleted: true}, {}}}}}, nil)

	result, err := scorer.Compute(context.Background(), athleteID)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 40.0, result.Components[readiness.Consistency])
	assert.Equal(t, 50.0, result.Components[readiness.Volume])
	assert.Equal(t, 20.0, result.Components[readiness.RunFitness])
	assert.Equal(t, 30.0, result.Components[readiness.StationPrep])
	assert.Equal(t, 50.0, result.Components[readiness.PlanAdherence])
	assert.Equal(t, 80.0, result.Components[readiness.Recovery])
	assert.Equal(t, 80.0, result.Components[readiness.RaceSpecific])
	assert.Equal(t, readiness.RunFitness, result.Weakest)
	// 8 + 7.5 + 4 + 4.5 + 7.5 + 4 + 8
	assert.Equal(t, 44, result.Score)

	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterReadinessComputed))
}

func TestScorer_Compute_NoPlanNoWorkouts(t *testing.T) {
	ctrl := gomock.NewController(t)
	workoutsRepo := NewMockworkoutsRepo(ctrl)
	plansRepo := NewMockplansRepo(ctrl)
	athleteID := uuid.New()

	workoutsRepo.EXPECT().ListSince(gomock.Any(), athleteID, gomock.Any(), 0).Return(nil, nil)
	plansRepo.EXPECT().ActivePlan(gomock.Any(), athleteID, 0).Return(nil, plans.ErrNoActivePlan)

	result, err := readiness.NewScorer(workoutsRepo, plansRepo, nil).Compute(context.Background(), athleteID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Components[readiness.PlanAdherence])
	assert.Equal(t, 50.0, result.Components[readiness.Recovery])
	assert.Equal(t, 30.0, result.Components[readiness.RaceSpecific])
	assert.Equal(t, readiness.Consistency, result.Weakest)
	assert.Equal(t, 6, result.Score)
}

func TestScorer_Compute_DataAccessErrors(t *testing.T) {
	athleteID := uuid.New()

	t.Run("workouts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		workoutsRepo := NewMockworkoutsRepo(ctrl)
		plansRepo := NewMockplansRepo(ctrl)
		workoutsRepo.EXPECT().ListSince(gomock.Any(), athleteID, gomock.Any(), 0).Return(nil, errors.New("connection refused"))

		result, err := readiness.NewScorer(workoutsRepo, plansRepo, nil).Compute(context.Background(), athleteID)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("plan", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		workoutsRepo := NewMockworkoutsRepo(ctrl)
		plansRepo := NewMockplansRepo(ctrl)
		workoutsRepo.EXPECT().ListSince(gomock.Any(), athleteID, gomock.Any(), 0).Return(nil, nil)
		plansRepo.EXPECT().ActivePlan(gomock.Any(), athleteID, 0).Return(nil, errors.New("timeout"))

		_, err := readiness.NewScorer(workoutsRepo, plansRepo, nil).Compute(context.Background(), athleteID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get active plan")
	})
}
