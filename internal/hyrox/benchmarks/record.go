package benchmarks

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RecordStationTime    = "station_time"
	RecordRunningPace    = "running_pace"
	RecordRaceTime       = "race_time"
	RecordRunTime        = "run_time"
	RecordExerciseWeight = "exercise_weight"
	RecordMaxReps        = "max_reps"
	RecordDistance       = "distance"
)

// RecordTypes lists every personal record category.
var RecordTypes = []string{
	RecordStationTime,
	RecordRunningPace,
	RecordRaceTime,
	RecordRunTime,
	RecordExerciseWeight,
	RecordMaxReps,
	RecordDistance,
}

var lowerIsBetter = map[string]bool{
	RecordStationTime: true,
	RecordRunningPace: true,
	RecordRaceTime:    true,
	RecordRunTime:     true,
}

var recordTypeByTest = map[string]string{
	"station_time":    RecordStationTime,
	"station":         RecordStationTime,
	"station_test":    RecordStationTime,
	"running_pace":    RecordRunningPace,
	"pace":            RecordRunningPace,
	"tempo_run":       RecordRunningPace,
	"run_time":        RecordRunTime,
	"1km_run":         RecordRunTime,
	"1k_run":          RecordRunTime,
	"5km_run":         RecordRunTime,
	"5k_run":          RecordRunTime,
	"10km_run":        RecordRunTime,
	"10k_run":         RecordRunTime,
	"race_time":       RecordRaceTime,
	"race_simulation": RecordRaceTime,
	"full_simulation": RecordRaceTime,
	"half_simulation": RecordRaceTime,
	"exercise_weight": RecordExerciseWeight,
	"max_weight":      RecordExerciseWeight,
	"1rm":             RecordExerciseWeight,
	"3rm":             RecordExerciseWeight,
	"5rm":             RecordExerciseWeight,
	"max_reps":        RecordMaxReps,
	"amrap":           RecordMaxReps,
	"distance":        RecordDistance,
	"max_distance":    RecordDistance,
}

// Benchmark is an immutable measurement. Value is the primary result in Unit; Results holds
// optional secondary measurements.
type Benchmark struct {
	ID         uuid.UUID          `json:"id"`
	AthleteID  uuid.UUID          `json:"athlete_id"`
	TestType   string             `json:"test_type"`
	StationID  *uuid.UUID         `json:"station_id,omitempty"`
	ExerciseID *uuid.UUID         `json:"exercise_id,omitempty"`
	Value      float64            `json:"value"`
	Unit       string             `json:"unit,omitempty"`
	Results    map[string]float64 `json:"results,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	TestDate   time.Time          `json:"test_date"`
	IsPR       bool               `json:"is_pr"`
	CreatedAt  time.Time          `json:"created_at"`
}

type PersonalRecord struct {
	ID            uuid.UUID  `json:"id"`
	AthleteID     uuid.UUID  `json:"athlete_id"`
	RecordType    string     `json:"record_type"`
	RecordKey     string     `json:"record_key"`
	StationID     *uuid.UUID `json:"station_id,omitempty"`
	StationName   *string    `json:"station_name,omitempty"`
	ExerciseID    *uuid.UUID `json:"exercise_id,omitempty"`
	ExerciseName  *string    `json:"exercise_name,omitempty"`
	Value         float64    `json:"value"`
	Unit          string     `json:"unit,omitempty"`
	PreviousValue *float64   `json:"previous_value,omitempty"`
	AchievedAt    time.Time  `json:"achieved_at"`
}

// RecordTypeFor maps a free-form test type onto a record category. Unknown test types fall
// back to station_time when a station is referenced, otherwise running_pace.
func RecordTypeFor(testType string, stationID, exerciseID *uuid.UUID) string {
	if rt, ok := recordTypeByTest[normalize(testType)]; ok {
		return rt
	}
	if stationID != nil {
		return RecordStationTime
	}
	return RecordRunningPace
}

// LowerIsBetter reports whether smaller values beat larger ones for the record type.
func LowerIsBetter(recordType string) bool {
	return lowerIsBetter[recordType]
}

// IsBetter reports whether candidate strictly beats current for the record type.
func IsBetter(recordType string, candidate, current float64) bool {
	if LowerIsBetter(recordType) {
		return candidate < current
	}
	return candidate > current
}

// RecordKey identifies the measured thing: the station, else the exercise, else the test type.
func RecordKey(testType string, stationID, exerciseID *uuid.UUID) string {
	switch {
	case stationID != nil:
		return stationID.String()
	case exerciseID != nil:
		return exerciseID.String()
	default:
		return normalize(testType)
	}
}

func normalize(testType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(testType)), " ", "_")
}
