package library

import (
	"context"
	"fmt"

	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const maxMatches = 5

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// FindExercises matches exercise names containing name, shortest names first so exact
// matches lead.
func (r *Repo) FindExercises(ctx context.Context, name string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.library.findexercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", name))

	rows, err := r.db.Query(
		ctx,
		`SELECT
				e.id, e.name, e.category, e.description, e.instructions, e.muscle_groups, e.equipment,
				e.station_id, s.name
			FROM exercise_library e
			LEFT JOIN hyrox_stations s ON s.id = e.station_id
			WHERE e.name ILIKE $1
			ORDER BY length(e.name), e.name
			LIMIT $2;`,
		likePattern(name), maxMatches,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Category, &e.Description, &e.Instructions, &e.MuscleGroups, &e.Equipment,
			&e.StationID, &e.StationName,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return exercises, nil
}

// FindStations matches station names containing name, in race order.
func (r *Repo) FindStations(ctx context.Context, name string) (_ []Station, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.library.findstations")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", name))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, station_order, distance_or_reps, description, tips, common_mistakes, division_weights
			FROM hyrox_stations
			WHERE name ILIKE $1
			ORDER BY station_order
			LIMIT $2;`,
		likePattern(name), maxMatches,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var stations []Station
	for rows.Next() {
		var s Station
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Order, &s.DistanceOrReps, &s.Description, &s.Tips, &s.CommonMistakes, &s.DivisionWeights,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return stations, nil
}
