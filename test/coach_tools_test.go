//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/2beens/hyroxcoach/internal/middleware"

	"github.com/google/uuid"
)

func (s *IntegrationTestSuite) do(
	ctx context.Context,
	method string,
	path string,
	token string,
	body any,
) (int, map[string]any) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var out map[string]any
	if len(respBytes) > 0 && resp.Header.Get("Content-Type") == "application/json" {
		s.Require().NoError(json.Unmarshal(respBytes, &out), string(respBytes))
	}
	return resp.StatusCode, out
}

func (s *IntegrationTestSuite) invoke(ctx context.Context, f athleteFixture, tool string, input any) map[string]any {
	status, out := s.do(ctx, http.MethodPost, "/tools/"+tool, f.token, input)
	s.Require().Equal(http.StatusOK, status, out)
	return out
}

// seedPlanDay creates an active plan for the athlete starting this week with one day
// scheduled today, and returns the day id.
func (s *IntegrationTestSuite) seedPlanDay(ctx context.Context, f athleteFixture) uuid.UUID {
	today := time.Now().UTC()
	mondayOffset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -mondayOffset)

	var planID, weekID, dayID uuid.UUID
	s.Require().NoError(s.DB.QueryRow(ctx, `
		INSERT INTO training_plans (athlete_id, name, status, start_date, duration_weeks)
		VALUES ($1, 'Race block', 'active', $2, 8)
		RETURNING id;`, f.athleteID, start).Scan(&planID))
	s.Require().NoError(s.DB.QueryRow(ctx, `
		INSERT INTO training_plan_weeks (plan_id, week_number, focus)
		VALUES ($1, 1, 'base')
		RETURNING id;`, planID).Scan(&weekID))
	s.Require().NoError(s.DB.QueryRow(ctx, `
		INSERT INTO training_plan_days (week_id, day_of_week, title, session_type, duration_minutes)
		VALUES ($1, $2, 'Threshold intervals', 'run', 50)
		RETURNING id;`, weekID, mondayOffset).Scan(&dayID))
	return dayID
}

func (s *IntegrationTestSuite) TestUnauthorized() {
	ctx := context.Background()

	status, _ := s.do(ctx, http.MethodGet, "/tools", "", nil)
	s.Equal(http.StatusUnauthorized, status)

	status, _ = s.do(ctx, http.MethodGet, "/tools", "not-a-token", nil)
	s.Equal(http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestListTools() {
	status, out := s.do(context.Background(), http.MethodGet, "/tools", s.athlete.token, nil)
	s.Require().Equal(http.StatusOK, status)
	tools, ok := out["tools"].([]any)
	s.Require().True(ok)
	s.Len(tools, 21)
}

func (s *IntegrationTestSuite) TestInvalidAndUnknownTools() {
	ctx := context.Background()

	status, out := s.do(ctx, http.MethodPost, "/tools/create_workout_log", s.athlete.token, map[string]any{
		"date":         "yesterday",
		"session_type": "run",
	})
	s.Equal(http.StatusBadRequest, status)
	s.NotEmpty(out["problems"])

	status, _ = s.do(ctx, http.MethodPost, "/tools/drop_tables", s.athlete.token, map[string]any{})
	s.Equal(http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestWorkoutLogAndOwnership() {
	ctx := context.Background()
	today := time.Now().UTC().Format(time.DateOnly)

	created := s.invoke(ctx, s.athlete, "create_workout_log", map[string]any{
		"date":             today,
		"session_type":     "run",
		"duration_minutes": 60,
		"rpe_post":         7,
	})
	s.Require().Equal(true, created["success"], created)
	workout := created["workout"].(map[string]any)
	s.Equal(float64(420), workout["training_load"])
	s.Equal(s.athlete.athleteID.String(), workout["athlete_id"])

	recent := s.invoke(ctx, s.athlete, "get_recent_workouts", map[string]any{"days": 7})
	s.Len(recent["workouts"], 1)

	// the other athlete sees neither the log nor its sets
	otherRecent := s.invoke(ctx, s.other, "get_recent_workouts", map[string]any{"days": 7})
	s.Empty(otherRecent["workouts"])

	sets := s.invoke(ctx, s.other, "get_workout_sets", map[string]any{
		"workout_log_id": workout["id"],
	})
	s.Equal("Workout not found.", sets["message"])
	s.Empty(sets["sets"])

	ownSets := s.invoke(ctx, s.athlete, "get_workout_sets", map[string]any{
		"workout_log_id": workout["id"],
	})
	s.Equal("No sets recorded for this workout.", ownSets["message"])
}

func (s *IntegrationTestSuite) TestPersonalRecords() {
	ctx := context.Background()
	logBenchmark := func(value float64) map[string]any {
		return s.invoke(ctx, s.athlete, "log_benchmark", map[string]any{
			"test_type": "5k_run",
			"value":     value,
			"unit":      "seconds",
		})
	}

	first := logBenchmark(1500)
	s.Require().Equal(true, first["success"], first)
	s.Equal(true, first["is_pr"])
	s.Equal("New personal record!", first["message"])

	slower := logBenchmark(1550)
	s.Equal(true, slower["success"])
	s.Equal(false, slower["is_pr"])

	same := logBenchmark(1500)
	s.Equal(false, same["is_pr"])

	faster := logBenchmark(1450)
	s.Equal(true, faster["is_pr"])
	s.Equal("New personal record! Previous best was 1500 seconds.", faster["message"])

	records := s.invoke(ctx, s.athlete, "get_personal_records", map[string]any{})
	list, ok := records["records"].([]any)
	s.Require().True(ok, records)
	s.Require().Len(list, 1)
	s.Equal(float64(1450), list[0].(map[string]any)["value"])

	var benchmarks int
	s.Require().NoError(s.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM benchmark_tests WHERE athlete_id = $1;`, s.athlete.athleteID,
	).Scan(&benchmarks))
	s.Equal(4, benchmarks)
}

func (s *IntegrationTestSuite) TestTrainingPlanDayScoping() {
	ctx := context.Background()
	otherDayID := s.seedPlanDay(ctx, s.other)

	foreign := s.invoke(ctx, s.athlete, "update_training_plan_day", map[string]any{
		"day_id":       otherDayID.String(),
		"is_completed": true,
	})
	s.Equal(false, foreign["success"])
	s.Equal("Training plan day not found.", foreign["error"])

	var completed bool
	s.Require().NoError(s.DB.QueryRow(ctx,
		`SELECT is_completed FROM training_plan_days WHERE id = $1;`, otherDayID,
	).Scan(&completed))
	s.False(completed)

	todayWorkout := s.invoke(ctx, s.other, "get_today_workout", map[string]any{})
	s.Equal("Race block", todayWorkout["plan_name"])
	s.Equal(float64(1), todayWorkout["week_number"])

	own := s.invoke(ctx, s.other, "update_training_plan_day", map[string]any{
		"day_id":       otherDayID.String(),
		"is_completed": true,
	})
	s.Equal(true, own["success"], own)
}

func (s *IntegrationTestSuite) TestReadinessAndStats() {
	ctx := context.Background()

	status, out := s.do(ctx, http.MethodGet, "/readiness", s.athlete.token, nil)
	s.Require().Equal(http.StatusOK, status)
	score, ok := out["score"].(float64)
	s.Require().True(ok, out)
	s.GreaterOrEqual(score, float64(0))
	s.LessOrEqual(score, float64(100))
	s.NotEmpty(out["weakest"])

	stats := s.invoke(ctx, s.athlete, "get_athlete_stats", map[string]any{})
	s.NotNil(stats["profile"])
	s.Equal(float64(31), stats["days_to_race"])
}

func (s *IntegrationTestSuite) TestKnowledgeSearchDegrades() {
	// no embedding API key is configured, retrieval comes back empty
	out := s.invoke(context.Background(), s.athlete, "search_knowledge_base", map[string]any{
		"query": "sled push technique",
	})
	s.Empty(out["chunks"])
	s.Equal("No relevant knowledge found.", out["message"])
}
