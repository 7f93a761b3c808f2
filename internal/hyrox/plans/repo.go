package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNoActivePlan    = errors.New("no active training plan")
	ErrPlanDayNotFound = errors.New("training plan day not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ActivePlan returns the athlete's active plan with its weeks and days. When weekNumber is
// positive only that week is loaded. Returns ErrNoActivePlan when the athlete has none.
func (r *Repo) ActivePlan(ctx context.Context, athleteID uuid.UUID, weekNumber int) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.active")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))
	span.SetAttributes(attribute.Int("week_number", weekNumber))

	var p Plan
	err = r.db.QueryRow(
		ctx,
		`SELECT id, athlete_id, name, goal, status, start_date, duration_weeks
			FROM training_plans
			WHERE athlete_id = $1 AND status = 'active'
			ORDER BY updated_at DESC
			LIMIT 1;`,
		athleteID,
	).Scan(&p.ID, &p.AthleteID, &p.Name, &p.Goal, &p.Status, &p.StartDate, &p.DurationWeeks)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActivePlan
	}
	if err != nil {
		return nil, fmt.Errorf("query plan: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT
				w.id, w.plan_id, w.week_number, w.focus, w.notes,
				d.id, d.day_of_week, d.title, d.description, d.session_type, d.duration_minutes,
				COALESCE(d.is_rest_day, FALSE), COALESCE(d.is_completed, FALSE), d.completed_at
			FROM training_plan_weeks w
			LEFT JOIN training_plan_days d ON d.week_id = w.id
			WHERE w.plan_id = $1
				AND ($2::int <= 0 OR w.week_number = $2)
			ORDER BY w.week_number, d.day_of_week;`,
		p.ID, weekNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("query weeks: %w", err)
	}
	defer rows.Close()

	p.Weeks, err = rows2weeks(rows)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpdateDay applies u to the day only if the day -> week -> plan chain ends at athleteID.
// Any other day id, including ones owned by other athletes, yields ErrPlanDayNotFound.
func (r *Repo) UpdateDay(ctx context.Context, athleteID, dayID uuid.UUID, u DayUpdate) (_ *Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.updateday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))
	span.SetAttributes(attribute.String("day_id", dayID.String()))

	var d Day
	err = r.db.QueryRow(
		ctx,
		`UPDATE training_plan_days d SET
				title = COALESCE($3, d.title),
				description = COALESCE($4, d.description),
				session_type = COALESCE($5, d.session_type),
				is_completed = COALESCE($6, d.is_completed),
				completed_at = CASE
					WHEN $6::boolean IS NULL THEN d.completed_at
					WHEN $6::boolean THEN COALESCE(d.completed_at, now())
					ELSE NULL
				END,
				updated_at = now()
			FROM training_plan_weeks w
			JOIN training_plans p ON p.id = w.plan_id
			WHERE d.id = $1
				AND d.week_id = w.id
				AND p.athlete_id = $2
				AND p.status <> 'deleted'
			RETURNING d.id, d.week_id, d.day_of_week, d.title, d.description, d.session_type,
				d.duration_minutes, d.is_rest_day, d.is_completed, d.completed_at;`,
		dayID, athleteID, u.Title, u.Description, u.SessionType, u.IsCompleted,
	).Scan(
		&d.ID, &d.WeekID, &d.DayOfWeek, &d.Title, &d.Description, &d.SessionType,
		&d.DurationMinutes, &d.IsRestDay, &d.IsCompleted, &d.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanDayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update day: %w", err)
	}

	return &d, nil
}

func rows2weeks(rows pgx.Rows) ([]Week, error) {
	var weeks []Week
	for rows.Next() {
		var (
			w           Week
			dayID       *uuid.UUID
			dayOfWeek   *int
			title       *string
			description *string
			d           Day
		)
		if err := rows.Scan(
			&w.ID, &w.PlanID, &w.WeekNumber, &w.Focus, &w.Notes,
			&dayID, &dayOfWeek, &title, &description, &d.SessionType, &d.DurationMinutes,
			&d.IsRestDay, &d.IsCompleted, &d.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}

		if len(weeks) == 0 || weeks[len(weeks)-1].ID != w.ID {
			w.Days = []Day{}
			weeks = append(weeks, w)
		}
		if dayID == nil {
			continue
		}

		d.ID = *dayID
		d.WeekID = w.ID
		d.DayOfWeek = *dayOfWeek
		if title != nil {
			d.Title = *title
		}
		if description != nil {
			d.Description = *description
		}
		last := &weeks[len(weeks)-1]
		last.Days = append(last.Days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return weeks, nil
}
