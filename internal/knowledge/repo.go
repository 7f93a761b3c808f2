package knowledge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	fullTextWeight = 1.0
	semanticWeight = 1.0
	rrfK           = 50
)

type Chunk struct {
	ID         int64    `json:"id"`
	Content    string   `json:"content"`
	Section    string   `json:"section"`
	SourceName string   `json:"source_name"`
	Score      *float64 `json:"score,omitempty"`
}

type HybridQuery struct {
	Text       string
	Embedding  []float32
	MatchCount int
}

type Searcher interface {
	HybridSearch(ctx context.Context, q HybridQuery) ([]Chunk, error)
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// HybridSearch ranks chunks by reciprocal rank fusion of full text and embedding similarity.
func (r *Repo) HybridSearch(ctx context.Context, q HybridQuery) (_ []Chunk, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.knowledge.hybridsearch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("match_count", q.MatchCount))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, content, section, source_name, score
			FROM hybrid_search_chunks($1, $2::vector, $3, $4, $5, $6);`,
		q.Text, vectorLiteral(q.Embedding), q.MatchCount, fullTextWeight, semanticWeight, rrfK,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.Content, &c.Section, &c.SourceName, &c.Score); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	span.SetAttributes(attribute.Int("chunks", len(chunks)))
	return chunks, nil
}

// vectorLiteral renders a pgvector text literal, e.g. [0.1,0.2].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
