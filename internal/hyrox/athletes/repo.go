package athletes

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

var ErrProfileNotFound = errors.New("athlete profile not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Profile(ctx context.Context, athleteID uuid.UUID) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athletes.profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))

	var p Profile
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, display_name, gender, division, race_date, goal_time_minutes,
				training_phase, fitness_level, equipment, injuries
			FROM athlete_profiles
			WHERE id = $1;`,
		athleteID,
	).Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Gender, &p.Division, &p.RaceDate, &p.GoalTimeMinutes,
		&p.TrainingPhase, &p.FitnessLevel, &p.Equipment, &p.Injuries,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	return &p, nil
}

// AthleteIDForUser resolves the single profile owned by a user.
func (r *Repo) AthleteIDForUser(ctx context.Context, userID uuid.UUID) (_ uuid.UUID, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athletes.foruser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	var id uuid.UUID
	err = r.db.QueryRow(ctx, `SELECT id FROM athlete_profiles WHERE user_id = $1;`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrProfileNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("query profile: %w", err)
	}
	return id, nil
}

func (r *Repo) CreateGoal(ctx context.Context, g Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athletes.creategoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", g.AthleteID.String()))
	span.SetAttributes(attribute.String("goal_type", g.GoalType))

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO goals
				(athlete_id, goal_type, title, description, target_value, target_unit, target_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, status, created_at;`,
		g.AthleteID, g.GoalType, g.Title, g.Description, g.TargetValue, g.TargetUnit, g.TargetDate,
	).Scan(&g.ID, &g.Status, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}

	return &g, nil
}

func (r *Repo) ActiveGoals(ctx context.Context, athleteID uuid.UUID) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athletes.activegoals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, athlete_id, goal_type, title, description, target_value, target_unit, target_date, status, created_at
			FROM goals
			WHERE athlete_id = $1 AND status = 'active'
			ORDER BY target_date NULLS LAST, created_at;`,
		athleteID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(
			&g.ID, &g.AthleteID, &g.GoalType, &g.Title, &g.Description, &g.TargetValue,
			&g.TargetUnit, &g.TargetDate, &g.Status, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return goals, nil
}

// Achievements lists every achievement definition, flagging those the athlete has earned.
func (r *Repo) Achievements(ctx context.Context, athleteID uuid.UUID) (_ []Achievement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athletes.achievements")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))

	rows, err := r.db.Query(
		ctx,
		`SELECT ad.id, ad.code, ad.name, ad.description, ad.category, ad.icon, aa.earned_at
			FROM achievement_definitions ad
			LEFT JOIN athlete_achievements aa ON aa.achievement_id = ad.id AND aa.athlete_id = $1
			ORDER BY ad.category, ad.name;`,
		athleteID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var achievements []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Category, &a.Icon, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		a.Earned = a.EarnedAt != nil
		achievements = append(achievements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return achievements, nil
}
