package races

import (
	"errors"
	"fmt"
	"math"

	"github.com/2beens/hyroxcoach/pkg"
)

const (
	FitnessBeginner     = "beginner"
	FitnessIntermediate = "intermediate"
	FitnessAdvanced     = "advanced"

	TransitionShare = 0.04
	RunSegments     = 8
)

var FitnessLevels = []string{FitnessBeginner, FitnessIntermediate, FitnessAdvanced}

// Stations in race order.
var Stations = []string{
	"SkiErg",
	"Sled Push",
	"Sled Pull",
	"Burpee Broad Jumps",
	"Rowing",
	"Farmers Carry",
	"Sandbag Lunges",
	"Wall Balls",
}

var runShares = map[string]float64{
	FitnessBeginner:     0.52,
	FitnessIntermediate: 0.48,
	FitnessAdvanced:     0.46,
}

var ErrUnknownFitnessLevel = errors.New("unknown fitness level")

type Segment struct {
	Name      string  `json:"name"`
	Minutes   float64 `json:"minutes"`
	Formatted string  `json:"formatted"`
}

type Pacing struct {
	TargetMinutes       float64   `json:"target_minutes"`
	FitnessLevel        string    `json:"fitness_level"`
	RunShare            float64   `json:"run_share"`
	RunTotalMinutes     float64   `json:"run_total_minutes"`
	StationTotalMinutes float64   `json:"station_total_minutes"`
	TransitionMinutes   float64   `json:"transition_minutes"`
	RunPerKm            string    `json:"run_pace_per_km"`
	RunSplits           []Segment `json:"run_splits"`
	StationSplits       []Segment `json:"station_splits"`
}

// CalculatePacing splits a target finish time across eight 1 km runs, the eight stations
// and transitions, using the run share for the athlete's fitness level.
func CalculatePacing(targetMinutes float64, fitnessLevel string) (*Pacing, error) {
	if targetMinutes <= 0 || math.IsNaN(targetMinutes) || math.IsInf(targetMinutes, 0) {
		return nil, fmt.Errorf("target minutes must be positive, got %v", targetMinutes)
	}
	runShare, ok := runShares[fitnessLevel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFitnessLevel, fitnessLevel)
	}

	runTotal := targetMinutes * runShare
	transitions := targetMinutes * TransitionShare
	stationTotal := targetMinutes - runTotal - transitions

	perRun := runTotal / RunSegments
	perStation := stationTotal / float64(len(Stations))

	p := &Pacing{
		TargetMinutes:       targetMinutes,
		FitnessLevel:        fitnessLevel,
		RunShare:            runShare,
		RunTotalMinutes:     pkg.Round2(runTotal),
		StationTotalMinutes: pkg.Round2(stationTotal),
		TransitionMinutes:   pkg.Round2(transitions),
		RunPerKm:            FormatMinutes(perRun),
		RunSplits:           make([]Segment, 0, RunSegments),
		StationSplits:       make([]Segment, 0, len(Stations)),
	}
	for i := 1; i <= RunSegments; i++ {
		p.RunSplits = append(p.RunSplits, Segment{
			Name:      fmt.Sprintf("Run %d (1 km)", i),
			Minutes:   pkg.Round2(perRun),
			Formatted: FormatMinutes(perRun),
		})
	}
	for _, station := range Stations {
		p.StationSplits = append(p.StationSplits, Segment{
			Name:      station,
			Minutes:   pkg.Round2(perStation),
			Formatted: FormatMinutes(perStation),
		})
	}

	return p, nil
}

// FormatMinutes renders fractional minutes as mm:ss.
func FormatMinutes(minutes float64) string {
	return FormatSeconds(int(math.Round(minutes * 60)))
}

// FormatSeconds renders seconds as mm:ss; minutes are not wrapped into hours.
func FormatSeconds(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%d:%02d", sign, seconds/60, seconds%60)
}
