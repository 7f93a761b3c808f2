package benchmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type LogResult struct {
	Benchmark  Benchmark       `json:"benchmark"`
	RecordType string          `json:"record_type"`
	IsPR       bool            `json:"is_pr"`
	Record     *PersonalRecord `json:"personal_record,omitempty"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// LogBenchmark stores the benchmark and, in the same transaction, promotes it to the
// athlete's personal record when no record exists yet for its key or when it strictly beats
// the stored one. The comparison happens inside a single conditional upsert.
func (r *Repo) LogBenchmark(ctx context.Context, b Benchmark) (_ *LogResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.benchmarks.log")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	recordType := RecordTypeFor(b.TestType, b.StationID, b.ExerciseID)
	recordKey := RecordKey(b.TestType, b.StationID, b.ExerciseID)
	span.SetAttributes(attribute.String("athlete_id", b.AthleteID.String()))
	span.SetAttributes(attribute.String("record_type", recordType))
	span.SetAttributes(attribute.String("record_key", recordKey))

	if b.Results == nil {
		b.Results = map[string]float64{}
	}
	resultsJson, err := json.Marshal(b.Results)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(
		ctx,
		`INSERT INTO benchmark_tests
				(athlete_id, test_type, station_id, exercise_id, value, unit, results, notes, test_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at;`,
		b.AthleteID, b.TestType, b.StationID, b.ExerciseID, b.Value, b.Unit, resultsJson, b.Notes, b.TestDate,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert benchmark: %w", err)
	}

	pr := PersonalRecord{
		AthleteID:  b.AthleteID,
		RecordType: recordType,
		RecordKey:  recordKey,
		StationID:  b.StationID,
		ExerciseID: b.ExerciseID,
		Value:      b.Value,
		Unit:       b.Unit,
		AchievedAt: b.TestDate,
	}
	err = tx.QueryRow(
		ctx,
		`INSERT INTO personal_records AS pr
				(athlete_id, record_type, record_key, station_id, exercise_id, value, unit, benchmark_id, achieved_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (athlete_id, record_type, record_key) DO UPDATE SET
				previous_value = pr.value,
				value = EXCLUDED.value,
				unit = EXCLUDED.unit,
				benchmark_id = EXCLUDED.benchmark_id,
				achieved_at = EXCLUDED.achieved_at,
				updated_at = now()
			WHERE ($10::boolean AND EXCLUDED.value < pr.value)
				OR (NOT $10::boolean AND EXCLUDED.value > pr.value)
			RETURNING id, previous_value;`,
		pr.AthleteID, pr.RecordType, pr.RecordKey, pr.StationID, pr.ExerciseID,
		pr.Value, pr.Unit, b.ID, pr.AchievedAt, LowerIsBetter(recordType),
	).Scan(&pr.ID, &pr.PreviousValue)
	if errors.Is(err, pgx.ErrNoRows) {
		// existing record is at least as good
		return &LogResult{Benchmark: b, RecordType: recordType}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("upsert personal record: %w", err)
	}

	if _, err = tx.Exec(ctx, `UPDATE benchmark_tests SET is_pr = TRUE WHERE id = $1;`, b.ID); err != nil {
		return nil, fmt.Errorf("flag benchmark: %w", err)
	}
	b.IsPR = true

	return &LogResult{
		Benchmark:  b,
		RecordType: recordType,
		IsPR:       true,
		Record:     &pr,
	}, nil
}

// PersonalRecords lists the athlete's current records, most recently achieved first.
// An empty recordType lists all categories; a positive limit caps the rows.
func (r *Repo) PersonalRecords(ctx context.Context, athleteID uuid.UUID, recordType string, limit int) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.benchmarks.personalrecords")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))
	span.SetAttributes(attribute.String("record_type", recordType))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`SELECT
				pr.id, pr.athlete_id, pr.record_type, pr.record_key, pr.station_id, hs.name,
				pr.exercise_id, el.name, pr.value, pr.unit, pr.previous_value, pr.achieved_at
			FROM personal_records pr
			LEFT JOIN hyrox_stations hs ON hs.id = pr.station_id
			LEFT JOIN exercise_library el ON el.id = pr.exercise_id
			WHERE pr.athlete_id = $1
				AND ($2::text = '' OR pr.record_type = $2)
			ORDER BY pr.achieved_at DESC, pr.updated_at DESC
			LIMIT CASE WHEN $3::int > 0 THEN $3::int END;`,
		athleteID, recordType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var records []PersonalRecord
	for rows.Next() {
		var pr PersonalRecord
		if err := rows.Scan(
			&pr.ID, &pr.AthleteID, &pr.RecordType, &pr.RecordKey, &pr.StationID, &pr.StationName,
			&pr.ExerciseID, &pr.ExerciseName, &pr.Value, &pr.Unit, &pr.PreviousValue, &pr.AchievedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		records = append(records, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return records, nil
}
