package biometrics

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const metricColumns = `id, user_id, date, hrv_ms, resting_hr, sleep_hours, stress_score,
	recovery_score, readiness_score, source`

// ListSince returns the user's metrics dated on or after since, newest first.
func (r *Repo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) (_ []DailyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.biometrics.listsince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID.String()))
	span.SetAttributes(attribute.String("since", since.Format(time.DateOnly)))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+metricColumns+`
			FROM daily_metrics
			WHERE user_id = $1 AND date >= $2
			ORDER BY date DESC;`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return rows2metrics(rows)
}

// Upsert writes the metric for (user, date); a second write for the same date replaces
// the first.
func (r *Repo) Upsert(ctx context.Context, m DailyMetric) (_ *DailyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.biometrics.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", m.UserID.String()))
	span.SetAttributes(attribute.String("date", m.Date.Format(time.DateOnly)))

	if m.Source == "" {
		m.Source = "manual"
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO daily_metrics
				(user_id, date, hrv_ms, resting_hr, sleep_hours, stress_score, recovery_score, readiness_score, source)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (user_id, date) DO UPDATE SET
				hrv_ms = EXCLUDED.hrv_ms,
				resting_hr = EXCLUDED.resting_hr,
				sleep_hours = EXCLUDED.sleep_hours,
				stress_score = EXCLUDED.stress_score,
				recovery_score = EXCLUDED.recovery_score,
				readiness_score = EXCLUDED.readiness_score,
				source = EXCLUDED.source,
				updated_at = now()
			RETURNING `+metricColumns+`;`,
		m.UserID, m.Date, m.HRVMs, m.RestingHR, m.SleepHours,
		m.StressScore, m.RecoveryScore, m.ReadinessScore, m.Source,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert daily metric: %w", err)
	}
	defer rows.Close()

	metrics, err := rows2metrics(rows)
	if err != nil {
		return nil, err
	}
	if len(metrics) != 1 {
		return nil, fmt.Errorf("unexpected upsert result count: %d", len(metrics))
	}
	return &metrics[0], nil
}

func rows2metrics(rows pgx.Rows) ([]DailyMetric, error) {
	var metrics []DailyMetric
	for rows.Next() {
		var m DailyMetric
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Date, &m.HRVMs, &m.RestingHR, &m.SleepHours,
			&m.StressScore, &m.RecoveryScore, &m.ReadinessScore, &m.Source,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return metrics, nil
}
