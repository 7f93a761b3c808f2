package athletes

import (
	"time"

	"github.com/google/uuid"
)

const (
	GoalRaceTime    = "race_time"
	GoalStationTime = "station_time"
	GoalRunPace     = "run_pace"
	GoalStrength    = "strength"
	GoalWeight      = "body_weight"
	GoalConsistency = "consistency"
	GoalOther       = "other"
)

// GoalTypes is the closed set of goal categories.
var GoalTypes = []string{
	GoalRaceTime,
	GoalStationTime,
	GoalRunPace,
	GoalStrength,
	GoalWeight,
	GoalConsistency,
	GoalOther,
}

type Profile struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	DisplayName     string     `json:"display_name"`
	Gender          *string    `json:"gender,omitempty"`
	Division        *string    `json:"division,omitempty"`
	RaceDate        *time.Time `json:"race_date,omitempty"`
	GoalTimeMinutes *float64   `json:"goal_time_minutes,omitempty"`
	TrainingPhase   *string    `json:"training_phase,omitempty"`
	FitnessLevel    *string    `json:"fitness_level,omitempty"`
	Equipment       []string   `json:"equipment"`
	Injuries        []string   `json:"injuries"`
}

// DaysToRace returns whole days from today until the race, nil without a race date.
func (p *Profile) DaysToRace(today time.Time) *int {
	if p.RaceDate == nil {
		return nil
	}
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	r := time.Date(p.RaceDate.Year(), p.RaceDate.Month(), p.RaceDate.Day(), 0, 0, 0, 0, time.UTC)
	days := int(r.Sub(t).Hours() / 24)
	return &days
}

type Goal struct {
	ID          uuid.UUID  `json:"id"`
	AthleteID   uuid.UUID  `json:"athlete_id"`
	GoalType    string     `json:"goal_type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TargetValue *float64   `json:"target_value,omitempty"`
	TargetUnit  string     `json:"target_unit,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Achievement struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Icon        string     `json:"icon,omitempty"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}
