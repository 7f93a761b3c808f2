package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/hyroxcoach/internal/hyrox/plans"

	"github.com/google/uuid"
)

type getTodayWorkoutInput struct{}

type getTrainingPlanInput struct {
	WeekNumber int `json:"week_number,omitempty" validate:"omitempty,min=1,max=52" jsonschema:"Only return this plan week"`
}

type updateTrainingPlanDayInput struct {
	DayID       string  `json:"day_id" validate:"required,uuid" jsonschema:"Id of the plan day to update"`
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200" jsonschema:"New title"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000" jsonschema:"New description"`
	SessionType *string `json:"session_type,omitempty" validate:"omitempty,oneof=run strength hiit station_practice simulation recovery mobility cross_training" jsonschema:"New session type"`
	IsCompleted *bool   `json:"is_completed,omitempty" jsonschema:"Mark the day as completed or not"`
}

type PlanTools struct {
	plans plansRepo
	now   func() time.Time
}

func NewPlanTools(plansRepo plansRepo, now func() time.Time) *PlanTools {
	if now == nil {
		now = time.Now
	}
	return &PlanTools{
		plans: plansRepo,
		now:   now,
	}
}

func (p *PlanTools) Tools() []Tool {
	return []Tool{
		NewTool(
			"get_today_workout",
			"Returns the session scheduled for today in the athlete's active training plan.",
			p.getTodayWorkout,
		),
		NewTool(
			"get_training_plan",
			"Returns the athlete's active training plan with its weeks and days, optionally one week only.",
			p.getTrainingPlan,
		),
		NewMutationTool(
			"update_training_plan_day",
			"Changes a day of the athlete's active plan: title, description, session type or completion.",
			p.updateTrainingPlanDay,
		),
	}
}

func (p *PlanTools) getTodayWorkout(ctx context.Context, c Call, _ getTodayWorkoutInput) Result {
	plan, err := p.plans.ActivePlan(ctx, c.AthleteID, 0)
	if errors.Is(err, plans.ErrNoActivePlan) {
		return Result{"workout": nil, "message": "No active training plan."}
	}
	if err != nil {
		return c.ReadFailure("fetch today's workout", err)
	}

	now := today(p.now)
	week, day := plan.DayFor(now)
	out := Result{
		"plan_name":   plan.Name,
		"week_number": plans.CurrentWeek(plan.StartDate, now),
		"day_of_week": plans.MondayIndex(now.Weekday()),
		"workout":     nil,
	}
	if week != nil {
		out["week_focus"] = week.Focus
	}
	if day == nil {
		out["message"] = "Nothing scheduled for today."
		return out
	}

	out["workout"] = day
	return out
}

func (p *PlanTools) getTrainingPlan(ctx context.Context, c Call, in getTrainingPlanInput) Result {
	plan, err := p.plans.ActivePlan(ctx, c.AthleteID, in.WeekNumber)
	if errors.Is(err, plans.ErrNoActivePlan) {
		return Result{"plan": nil, "message": "No active training plan."}
	}
	if err != nil {
		return c.ReadFailure("fetch the training plan", err)
	}

	out := Result{
		"plan":         plan,
		"current_week": plans.CurrentWeek(plan.StartDate, today(p.now)),
	}
	switch {
	case len(plan.Weeks) > 0:
	case in.WeekNumber > 0:
		out["message"] = fmt.Sprintf("No week %d in the active plan.", in.WeekNumber)
	default:
		out["message"] = "The plan has no weeks scheduled yet."
	}
	return out
}

func (p *PlanTools) updateTrainingPlanDay(ctx context.Context, c Call, in updateTrainingPlanDayInput) Result {
	dayID, err := uuid.Parse(in.DayID)
	if err != nil {
		return c.Failure("Training plan day not found.", nil)
	}

	u := plans.DayUpdate{
		Title:       in.Title,
		Description: in.Description,
		SessionType: in.SessionType,
		IsCompleted: in.IsCompleted,
	}
	if u.Empty() {
		return c.Failure("Nothing to update.", nil)
	}

	day, err := p.plans.UpdateDay(ctx, c.AthleteID, dayID, u)
	if errors.Is(err, plans.ErrPlanDayNotFound) {
		return c.Failure("Training plan day not found.", nil)
	}
	if err != nil {
		return c.Failure("Failed to update training plan day.", err)
	}

	return Success("day", day)
}
