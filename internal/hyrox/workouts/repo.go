package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type NewLog struct {
	AthleteID       uuid.UUID
	Date            time.Time
	SessionType     string
	DurationMinutes int
	RPEPre          *int
	RPEPost         *int
	TrainingLoad    *int
	TotalVolumeKg   *float64
	TotalDistanceKm *float64
	Notes           string
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const logColumns = `id, athlete_id, date, session_type, duration_minutes, rpe_pre, rpe_post,
	training_load, total_volume_kg, total_distance_km, notes, created_at`

func (r *Repo) Create(ctx context.Context, nl NewLog) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", nl.AthleteID.String()))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO workout_logs
				(athlete_id, date, session_type, duration_minutes, rpe_pre, rpe_post,
				 training_load, total_volume_kg, total_distance_km, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING `+logColumns+`;`,
		nl.AthleteID, nl.Date, nl.SessionType, nl.DurationMinutes, nl.RPEPre, nl.RPEPost,
		nl.TrainingLoad, nl.TotalVolumeKg, nl.TotalDistanceKm, nl.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout log: %w", err)
	}
	defer rows.Close()

	logs, err := rows2logs(rows)
	if err != nil {
		return nil, err
	}
	if len(logs) != 1 {
		return nil, errors.New("unexpected error [no rows returned]")
	}

	return &logs[0], nil
}

// ListSince returns the athlete's non-deleted logs dated on or after since, newest first.
// A positive limit caps the number of rows.
func (r *Repo) ListSince(ctx context.Context, athleteID uuid.UUID, since time.Time, limit int) (_ []Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listsince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))
	span.SetAttributes(attribute.String("since", since.Format(time.DateOnly)))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+logColumns+`
			FROM workout_logs
			WHERE athlete_id = $1
				AND deleted_at IS NULL
				AND date >= $2
			ORDER BY date DESC, created_at DESC
			LIMIT CASE WHEN $3::int > 0 THEN $3::int END;`,
		athleteID, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return rows2logs(rows)
}

// Sets returns the sets of a workout log after verifying the log belongs to the athlete and
// is not deleted. A log owned by someone else is reported as ErrWorkoutNotFound.
func (r *Repo) Sets(ctx context.Context, athleteID, logID uuid.UUID) (_ []Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))
	span.SetAttributes(attribute.String("workout_log_id", logID.String()))

	var owned bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM workout_logs WHERE id = $1 AND athlete_id = $2 AND deleted_at IS NULL
		);`,
		logID, athleteID,
	).Scan(&owned); err != nil {
		return nil, fmt.Errorf("verify ownership: %w", err)
	}
	if !owned {
		return nil, ErrWorkoutNotFound
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT
				s.id, s.workout_log_id, s.exercise_id, COALESCE(el.name, s.exercise_name), s.set_number,
				s.reps, s.weight_kg, s.distance_m, s.duration_seconds, s.notes
			FROM workout_sets s
			LEFT JOIN exercise_library el ON el.id = s.exercise_id
			WHERE s.workout_log_id = $1
			ORDER BY s.set_number;`,
		logID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	var sets []Set
	for rows.Next() {
		var s Set
		if err := rows.Scan(
			&s.ID, &s.WorkoutLogID, &s.ExerciseID, &s.ExerciseName, &s.SetNumber,
			&s.Reps, &s.WeightKg, &s.DistanceM, &s.DurationSeconds, &s.Notes,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return sets, nil
}

func rows2logs(rows pgx.Rows) ([]Log, error) {
	var logs []Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(
			&l.ID, &l.AthleteID, &l.Date, &l.SessionType, &l.DurationMinutes, &l.RPEPre, &l.RPEPost,
			&l.TrainingLoad, &l.TotalVolumeKg, &l.TotalDistanceKm, &l.Notes, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return logs, nil
}
