package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/hyroxcoach/internal/hyrox/athletes"
	"github.com/2beens/hyroxcoach/internal/hyrox/benchmarks"
	"github.com/2beens/hyroxcoach/internal/hyrox/plans"
	"github.com/2beens/hyroxcoach/internal/hyrox/workouts"
	"github.com/2beens/hyroxcoach/internal/readiness"
	"github.com/2beens/hyroxcoach/pkg"

	"golang.org/x/sync/errgroup"
)

const (
	statsWindowDays          = 7
	statsRecordsLimit        = 5
	defaultProgressDays      = 30
	defaultPersonalRecordCap = 20
)

type logBenchmarkInput struct {
	TestType   string             `json:"test_type" validate:"required,min=2,max=100" jsonschema:"What was tested, e.g. 5k_run, 1rm, station_time, race_simulation"`
	Value      *float64           `json:"value" validate:"required,gte=0" jsonschema:"Primary result of the test"`
	Unit       string             `json:"unit,omitempty" validate:"max=20" jsonschema:"Unit of value, e.g. seconds, kg, reps, m"`
	StationID  *string            `json:"station_id,omitempty" validate:"omitempty,uuid" jsonschema:"Hyrox station the test was done on"`
	ExerciseID *string            `json:"exercise_id,omitempty" validate:"omitempty,uuid" jsonschema:"Exercise the test was done with"`
	Results    map[string]float64 `json:"results,omitempty" jsonschema:"Secondary measurements, name to number"`
	Notes      string             `json:"notes,omitempty" validate:"max=2000" jsonschema:"Free-form notes"`
	TestDate   string             `json:"test_date,omitempty" validate:"omitempty,datetime=2006-01-02" jsonschema:"Test date, YYYY-MM-DD (default today)"`
}

type getPersonalRecordsInput struct {
	RecordType string `json:"record_type,omitempty" validate:"omitempty,oneof=station_time running_pace race_time run_time exercise_weight max_reps distance" jsonschema:"Only records of this category"`
}

type getAthleteStatsInput struct{}

type setGoalInput struct {
	GoalType    string   `json:"goal_type" validate:"required,oneof=race_time station_time run_pace strength body_weight consistency other" jsonschema:"Kind of goal"`
	Title       string   `json:"title" validate:"required,min=2,max=200" jsonschema:"Short goal title"`
	Description string   `json:"description,omitempty" validate:"max=2000" jsonschema:"Longer description"`
	TargetValue *float64 `json:"target_value,omitempty" validate:"omitempty,gte=0" jsonschema:"Numeric target"`
	TargetUnit  string   `json:"target_unit,omitempty" validate:"max=20" jsonschema:"Unit of the target"`
	TargetDate  string   `json:"target_date,omitempty" validate:"omitempty,datetime=2006-01-02" jsonschema:"Deadline, YYYY-MM-DD"`
}

type getProgressSummaryInput struct {
	Days int `json:"days,omitempty" validate:"omitempty,min=1,max=365" jsonschema:"How many days back to summarize (default 30)"`
}

type getReadinessScoreInput struct{}

type AthleteTools struct {
	athletes   athletesRepo
	benchmarks benchmarksRepo
	workouts   workoutsRepo
	plans      plansRepo
	scorer     readinessScorer
	now        func() time.Time
}

type AthleteToolsParams struct {
	Athletes   athletesRepo
	Benchmarks benchmarksRepo
	Workouts   workoutsRepo
	Plans      plansRepo
	Scorer     readinessScorer
	Now        func() time.Time
}

func NewAthleteTools(p AthleteToolsParams) *AthleteTools {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &AthleteTools{
		athletes:   p.Athletes,
		benchmarks: p.Benchmarks,
		workouts:   p.Workouts,
		plans:      p.Plans,
		scorer:     p.Scorer,
		now:        now,
	}
}

func (a *AthleteTools) Tools() []Tool {
	return []Tool{
		NewMutationTool(
			"log_benchmark",
			"Records a benchmark test result and reports whether it is a new personal record.",
			a.logBenchmark,
		),
		NewTool(
			"get_personal_records",
			"Lists the athlete's current personal records, optionally for one category.",
			a.getPersonalRecords,
		),
		NewTool(
			"get_athlete_stats",
			"Returns the athlete profile, the last 7 days of training and the latest personal records.",
			a.getAthleteStats,
		),
		NewMutationTool(
			"set_goal",
			"Creates a new active goal for the athlete.",
			a.setGoal,
		),
		NewTool(
			"get_progress_summary",
			"Summarizes training over a period: totals by session type, active goals and plan adherence.",
			a.getProgressSummary,
		),
		NewTool(
			"get_readiness_score",
			"Computes the athlete's 0-100 race readiness score with its components and the weakest one.",
			a.getReadinessScore,
		),
	}
}

func (a *AthleteTools) logBenchmark(ctx context.Context, c Call, in logBenchmarkInput) Result {
	testDate, err := parseDate(in.TestDate, today(a.now))
	if err != nil {
		return c.Failure("Invalid test date.", nil)
	}
	stationID, err := parseOptionalUUID(in.StationID)
	if err != nil {
		return c.Failure("Invalid station id.", nil)
	}
	exerciseID, err := parseOptionalUUID(in.ExerciseID)
	if err != nil {
		return c.Failure("Invalid exercise id.", nil)
	}

	res, err := a.benchmarks.LogBenchmark(ctx, benchmarks.Benchmark{
		AthleteID:  c.AthleteID,
		TestType:   in.TestType,
		StationID:  stationID,
		ExerciseID: exerciseID,
		Value:      *in.Value,
		Unit:       in.Unit,
		Results:    in.Results,
		Notes:      in.Notes,
		TestDate:   testDate,
	})
	if pkg.IsForeignKeyViolationError(err) {
		return c.Failure("Unknown station or exercise.", nil)
	}
	if err != nil {
		return c.Failure("Failed to save benchmark.", err)
	}

	out := Success("benchmark", res.Benchmark)
	out["record_type"] = res.RecordType
	out["is_pr"] = res.IsPR
	if res.IsPR {
		out["personal_record"] = res.Record
		out["message"] = prMessage(res.Record)
	} else {
		out["message"] = "Benchmark logged. The existing personal record still stands."
	}
	return out
}

func prMessage(pr *benchmarks.PersonalRecord) string {
	if pr == nil || pr.PreviousValue == nil {
		return "New personal record!"
	}
	return fmt.Sprintf("New personal record! Previous best was %g%s.", *pr.PreviousValue, unitSuffix(pr.Unit))
}

func unitSuffix(unit string) string {
	if unit == "" {
		return ""
	}
	return " " + unit
}

func (a *AthleteTools) getPersonalRecords(ctx context.Context, c Call, in getPersonalRecordsInput) Result {
	records, err := a.benchmarks.PersonalRecords(ctx, c.AthleteID, in.RecordType, defaultPersonalRecordCap)
	if err != nil {
		return c.ReadFailure("fetch personal records", err)
	}
	if len(records) == 0 {
		return Result{
			"records": []benchmarks.PersonalRecord{},
			"message": "No personal records yet.",
		}
	}
	return Result{"records": records}
}

func (a *AthleteTools) getAthleteStats(ctx context.Context, c Call, _ getAthleteStatsInput) Result {
	now := today(a.now)

	var (
		profile *athletes.Profile
		week    []workouts.Log
		records []benchmarks.PersonalRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := a.athletes.Profile(gctx, c.AthleteID)
		if errors.Is(err, athletes.ErrProfileNotFound) {
			return nil
		}
		profile = p
		return err
	})
	g.Go(func() (err error) {
		week, err = a.workouts.ListSince(gctx, c.AthleteID, now.AddDate(0, 0, -statsWindowDays), 0)
		return err
	})
	g.Go(func() (err error) {
		records, err = a.benchmarks.PersonalRecords(gctx, c.AthleteID, "", statsRecordsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return c.ReadFailure("fetch athlete stats", err)
	}

	if records == nil {
		records = []benchmarks.PersonalRecord{}
	}
	out := Result{
		"profile":          profile,
		"last_7_days":      workouts.Summarize(week),
		"personal_records": records,
	}
	if profile == nil {
		out["message"] = "Athlete profile not found."
		return out
	}
	if days := profile.DaysToRace(now); days != nil {
		out["days_to_race"] = *days
	}
	return out
}

func (a *AthleteTools) setGoal(ctx context.Context, c Call, in setGoalInput) Result {
	g := athletes.Goal{
		AthleteID:   c.AthleteID,
		GoalType:    in.GoalType,
		Title:       in.Title,
		Description: in.Description,
		TargetValue: in.TargetValue,
		TargetUnit:  in.TargetUnit,
	}
	if in.TargetDate != "" {
		d, err := parseDate(in.TargetDate, time.Time{})
		if err != nil {
			return c.Failure("Invalid target date.", nil)
		}
		g.TargetDate = &d
	}

	created, err := a.athletes.CreateGoal(ctx, g)
	if err != nil {
		return c.Failure("Failed to save goal.", err)
	}

	return Success("goal", created)
}

func (a *AthleteTools) getProgressSummary(ctx context.Context, c Call, in getProgressSummaryInput) Result {
	days := in.Days
	if days == 0 {
		days = defaultProgressDays
	}
	since := today(a.now).AddDate(0, 0, -days)

	var (
		logs  []workouts.Log
		goals []athletes.Goal
		plan  *plans.Plan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		logs, err = a.workouts.ListSince(gctx, c.AthleteID, since, 0)
		return err
	})
	g.Go(func() (err error) {
		goals, err = a.athletes.ActiveGoals(gctx, c.AthleteID)
		return err
	})
	g.Go(func() error {
		p, err := a.plans.ActivePlan(gctx, c.AthleteID, 0)
		if errors.Is(err, plans.ErrNoActivePlan) {
			return nil
		}
		plan = p
		return err
	})
	if err := g.Wait(); err != nil {
		return c.ReadFailure("build the progress summary", err)
	}

	if goals == nil {
		goals = []athletes.Goal{}
	}
	out := Result{
		"days":           days,
		"workouts":       workouts.Summarize(logs),
		"active_goals":   goals,
		"has_plan":       plan != nil,
		"plan_adherence": readiness.PlanAdherenceScore(plan),
	}
	if len(logs) == 0 {
		out["message"] = "No workouts logged in this period."
	}
	return out
}

func (a *AthleteTools) getReadinessScore(ctx context.Context, c Call, _ getReadinessScoreInput) Result {
	res, err := a.scorer.Compute(ctx, c.AthleteID)
	if err != nil {
		return c.ReadFailure("calculate readiness", err)
	}
	return Result{
		"score":      res.Score,
		"components": res.Components,
		"weakest":    res.Weakest,
	}
}
