package races

import (
	"context"
	"fmt"

	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Results returns the athlete's latest races with their splits. Results and splits are
// read concurrently and joined in memory.
func (r *Repo) Results(ctx context.Context, athleteID uuid.UUID, limit int) (_ []Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.races.results")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))
	span.SetAttributes(attribute.Int("limit", limit))

	var (
		results []Result
		splits  map[uuid.UUID][]Split
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = r.results(gctx, athleteID, limit)
		return err
	})
	g.Go(func() error {
		var err error
		splits, err = r.splits(gctx, athleteID, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		results[i].Splits = splits[results[i].ID]
		if results[i].Splits == nil {
			results[i].Splits = []Split{}
		}
		results[i].Analyze()
	}

	return results, nil
}

func (r *Repo) results(ctx context.Context, athleteID uuid.UUID, limit int) ([]Result, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, race_name, race_date, location, division, total_time_seconds, notes
			FROM race_results
			WHERE athlete_id = $1
			ORDER BY race_date DESC, created_at DESC
			LIMIT $2;`,
		athleteID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var res Result
		if err := rows.Scan(
			&res.ID, &res.RaceName, &res.RaceDate, &res.Location, &res.Division, &res.TotalTimeSeconds, &res.Notes,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}

func (r *Repo) splits(ctx context.Context, athleteID uuid.UUID, limit int) (map[uuid.UUID][]Split, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT s.race_result_id, s.split_number, s.split_type, s.name, s.time_seconds
			FROM race_splits s
			WHERE s.race_result_id IN (
				SELECT id FROM race_results
				WHERE athlete_id = $1
				ORDER BY race_date DESC, created_at DESC
				LIMIT $2
			)
			ORDER BY s.race_result_id, s.split_number;`,
		athleteID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[uuid.UUID][]Split)
	for rows.Next() {
		var (
			resultID uuid.UUID
			s        Split
		)
		if err := rows.Scan(&resultID, &s.SplitNumber, &s.SplitType, &s.Name, &s.TimeSeconds); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		splits[resultID] = append(splits[resultID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return splits, nil
}

// SkillBenchmarks returns the tier thresholds for a segment and gender.
func (r *Repo) SkillBenchmarks(ctx context.Context, segmentType, gender string) (_ []SkillBenchmark, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.races.skillbenchmarks")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("segment_type", segmentType))
	span.SetAttributes(attribute.String("gender", gender))

	rows, err := r.db.Query(
		ctx,
		`SELECT segment_type, gender, tier, max_seconds
			FROM skill_benchmarks
			WHERE lower(segment_type) = lower($1) AND gender = $2
			ORDER BY max_seconds;`,
		segmentType, gender,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var benchmarks []SkillBenchmark
	for rows.Next() {
		var b SkillBenchmark
		if err := rows.Scan(&b.SegmentType, &b.Gender, &b.Tier, &b.MaxSeconds); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		benchmarks = append(benchmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return benchmarks, nil
}
