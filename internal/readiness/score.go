package readiness

import (
	"math"

	"github.com/2beens/hyroxcoach/internal/hyrox/plans"
	"github.com/2beens/hyroxcoach/internal/hyrox/workouts"
	"github.com/2beens/hyroxcoach/pkg"
)

type Component string

const (
	Consistency   Component = "consistency"
	Volume        Component = "volume"
	RunFitness    Component = "run_fitness"
	StationPrep   Component = "station_prep"
	PlanAdherence Component = "plan_adherence"
	Recovery      Component = "recovery"
	RaceSpecific  Component = "race_specific"
)

// Components in declaration order; the weakest component is the first minimum in this order.
var Components = []Component{
	Consistency,
	Volume,
	RunFitness,
	StationPrep,
	PlanAdherence,
	Recovery,
	RaceSpecific,
}

var Weights = map[Component]float64{
	Consistency:   0.20,
	Volume:        0.15,
	RunFitness:    0.20,
	StationPrep:   0.15,
	PlanAdherence: 0.15,
	Recovery:      0.05,
	RaceSpecific:  0.10,
}

const (
	weeklyVolumeTargetMinutes = 300
	neutralRecovery           = 50
	raceSpecificPracticed     = 80
	raceSpecificMissing       = 30
)

var stationSessionTypes = map[string]bool{
	workouts.SessionHIIT:            true,
	workouts.SessionStationPractice: true,
	workouts.SessionSimulation:      true,
}

type Inputs struct {
	// WeekWorkouts is the trailing 7 day window, MonthWorkouts the trailing 30 days.
	WeekWorkouts  []workouts.Log
	MonthWorkouts []workouts.Log
	// Plan is the athlete's active plan with all weeks and days, nil when there is none.
	Plan *plans.Plan
}

type Result struct {
	Score      int                   `json:"score"`
	Components map[Component]float64 `json:"components"`
	Weakest    Component             `json:"weakest"`
}

// Score computes the readiness composite. It is deterministic in its inputs.
func Score(in Inputs) Result {
	var weekMinutes int
	for _, w := range in.WeekWorkouts {
		weekMinutes += w.DurationMinutes
	}

	var runSessions, stationSessions int
	simulated := false
	for _, w := range in.MonthWorkouts {
		if w.SessionType == workouts.SessionRun {
			runSessions++
		}
		if stationSessionTypes[w.SessionType] {
			stationSessions++
		}
		if w.SessionType == workouts.SessionSimulation {
			simulated = true
		}
	}

	components := map[Component]float64{
		Consistency:   clamp(float64(len(in.WeekWorkouts)) * 20),
		Volume:        clamp(float64(weekMinutes) / weeklyVolumeTargetMinutes * 100),
		RunFitness:    clamp(float64(runSessions) * 10),
		StationPrep:   clamp(float64(stationSessions) * 15),
		PlanAdherence: PlanAdherenceScore(in.Plan),
		Recovery:      recovery(in.WeekWorkouts),
		RaceSpecific:  raceSpecificMissing,
	}
	if simulated {
		components[RaceSpecific] = raceSpecificPracticed
	}

	var composite float64
	weakest := Components[0]
	for _, c := range Components {
		composite += components[c] * Weights[c]
		if components[c] < components[weakest] {
			weakest = c
		}
	}

	return Result{
		Score:      int(math.Round(composite)),
		Components: components,
		Weakest:    weakest,
	}
}

// PlanAdherenceScore is the completed share of the plan's non-rest days, 0 without a plan.
// The athlete progress summary reports the same figure.
func PlanAdherenceScore(plan *plans.Plan) float64 {
	return clamp(plans.Adherence(plan))
}

// recovery penalizes sustained high perceived exertion. No workouts this week, or none
// with a post-session RPE, is neutral.
func recovery(week []workouts.Log) float64 {
	if len(week) == 0 {
		return neutralRecovery
	}
	avg, ok := workouts.MeanPostRPE(week)
	if !ok {
		return neutralRecovery
	}
	return clamp(100 - (avg-5)*20)
}

func clamp(v float64) float64 {
	return pkg.Clamp(v, 0, 100)
}
