package coach

import (
	"context"
	"strings"

	"github.com/2beens/hyroxcoach/internal/hyrox/races"
)

const defaultRaceResultsLimit = 5

type calculateRacePacingInput struct {
	TargetMinutes float64 `json:"target_minutes" validate:"required,gt=0,lte=300" jsonschema:"Target finish time in minutes"`
	FitnessLevel  string  `json:"fitness_level" validate:"required,oneof=beginner intermediate advanced" jsonschema:"Decides how the time is split between running and stations"`
}

type compareToBenchmarkInput struct {
	SegmentType string `json:"segment_type" validate:"required,min=2,max=100" jsonschema:"Station name or run segment, e.g. SkiErg, Wall Balls, run_1km"`
	TimeSeconds int    `json:"time_seconds" validate:"required,min=1,max=36000" jsonschema:"Segment time in seconds"`
	Gender      string `json:"gender" validate:"required,oneof=male female" jsonschema:"Benchmark table to compare against"`
}

type getRaceResultsInput struct {
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=20" jsonschema:"Number of most recent races (default 5)"`
}

type RaceTools struct {
	races racesRepo
}

func NewRaceTools(racesRepo racesRepo) *RaceTools {
	return &RaceTools{
		races: racesRepo,
	}
}

func (r *RaceTools) Tools() []Tool {
	return []Tool{
		NewTool(
			"calculate_race_pacing",
			"Splits a target Hyrox finish time into 8 one-km run splits, 8 station targets and transitions.",
			r.calculateRacePacing,
		),
		NewTool(
			"compare_to_benchmark",
			"Places a segment time into the elite, advanced, intermediate or beginner tier and shows the gap to the next tier.",
			r.compareToBenchmark,
		),
		NewTool(
			"get_race_results",
			"Returns the athlete's past race results with splits and the slowest station and run of each race.",
			r.getRaceResults,
		),
	}
}

func (r *RaceTools) calculateRacePacing(_ context.Context, c Call, in calculateRacePacingInput) Result {
	pacing, err := races.CalculatePacing(in.TargetMinutes, in.FitnessLevel)
	if err != nil {
		return c.ReadFailure("calculate race pacing", err)
	}
	return Result{"pacing": pacing}
}

func (r *RaceTools) compareToBenchmark(ctx context.Context, c Call, in compareToBenchmarkInput) Result {
	segmentType := strings.TrimSpace(in.SegmentType)
	thresholds, err := r.races.SkillBenchmarks(ctx, segmentType, in.Gender)
	if err != nil {
		return c.ReadFailure("compare to benchmarks", err)
	}
	if len(thresholds) == 0 {
		return Result{
			"comparison": nil,
			"message":    "No benchmarks available for this segment.",
		}
	}
	return Result{"comparison": races.Compare(segmentType, in.Gender, in.TimeSeconds, thresholds)}
}

func (r *RaceTools) getRaceResults(ctx context.Context, c Call, in getRaceResultsInput) Result {
	limit := in.Limit
	if limit == 0 {
		limit = defaultRaceResultsLimit
	}

	results, err := r.races.Results(ctx, c.AthleteID, limit)
	if err != nil {
		return c.ReadFailure("fetch race results", err)
	}
	if len(results) == 0 {
		return Result{
			"results": []races.Result{},
			"message": "No race results recorded yet.",
		}
	}
	return Result{"results": results}
}
