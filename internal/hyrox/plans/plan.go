package plans

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

type Plan struct {
	ID            uuid.UUID `json:"id"`
	AthleteID     uuid.UUID `json:"athlete_id"`
	Name          string    `json:"name"`
	Goal          string    `json:"goal,omitempty"`
	Status        string    `json:"status"`
	StartDate     time.Time `json:"start_date"`
	DurationWeeks int       `json:"duration_weeks"`
	Weeks         []Week    `json:"weeks"`
}

type Week struct {
	ID         uuid.UUID `json:"id"`
	PlanID     uuid.UUID `json:"plan_id"`
	WeekNumber int       `json:"week_number"`
	Focus      string    `json:"focus,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Days       []Day     `json:"days"`
}

// Day is one scheduled day. DayOfWeek runs 0 (Monday) to 6 (Sunday).
type Day struct {
	ID              uuid.UUID  `json:"id"`
	WeekID          uuid.UUID  `json:"week_id"`
	DayOfWeek       int        `json:"day_of_week"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	SessionType     *string    `json:"session_type,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	IsRestDay       bool       `json:"is_rest_day"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// DayUpdate carries the mutable fields of a plan day; nil fields are left untouched.
type DayUpdate struct {
	Title       *string
	Description *string
	SessionType *string
	IsCompleted *bool
}

func (u DayUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.SessionType == nil && u.IsCompleted == nil
}

// MondayIndex maps a weekday to the 0=Monday convention used by plan days.
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// CurrentWeek returns the 1-based plan week containing today. Dates before the start
// resolve to week 1.
func CurrentWeek(start, today time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Floor(t.Sub(s).Hours() / 24))
	week := int(math.Floor(float64(days)/7)) + 1
	if week < 1 {
		return 1
	}
	return week
}

// DayFor locates the scheduled day of the plan for the given date, nil when the plan
// has no row for it.
func (p *Plan) DayFor(today time.Time) (*Week, *Day) {
	weekNumber := CurrentWeek(p.StartDate, today)
	dow := MondayIndex(today.Weekday())
	for wi := range p.Weeks {
		w := &p.Weeks[wi]
		if w.WeekNumber != weekNumber {
			continue
		}
		for di := range w.Days {
			if w.Days[di].DayOfWeek == dow {
				return w, &w.Days[di]
			}
		}
		return w, nil
	}
	return nil, nil
}

// Adherence returns 100 x completed non-rest days / non-rest days across every week of the
// plan. A nil plan or a plan without training days scores 0.
func Adherence(p *Plan) float64 {
	if p == nil {
		return 0
	}
	var total, completed int
	for _, w := range p.Weeks {
		for _, d := range w.Days {
			if d.IsRestDay {
				continue
			}
			total++
			if d.IsCompleted {
				completed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}
