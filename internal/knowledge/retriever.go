package knowledge

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/2beens/hyroxcoach/internal/telemetry/metrics"
	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultMatchCount = 5
	ScoreThreshold    = 0.3

	oneHour                = 60 * 60
	embeddingCacheExpire   = oneHour
	embeddingCacheMegabyte = 1024 * 1024
	embeddingCacheSize     = 16 * embeddingCacheMegabyte

	chunkSeparator = "\n\n---\n\n"
)

// Degraded retrieval reasons.
const (
	ReasonEmptyQuery = "empty_query"
	ReasonEmbedding  = "embedding"
	ReasonSearch     = "search"
	ReasonNoMatch    = "no_match"
	ReasonPanic      = "panic"
)

type Result struct {
	Chunks    []Chunk `json:"chunks"`
	Formatted string  `json:"formatted"`
	ChunkIDs  []int64 `json:"chunk_ids"`
}

func emptyResult() Result {
	return Result{
		Chunks:    []Chunk{},
		Formatted: "",
		ChunkIDs:  []int64{},
	}
}

// Retriever grounds coaching answers in the knowledge corpus. Retrieval is advisory:
// every failure degrades to an empty Result.
type Retriever struct {
	embedder Embedder
	searcher Searcher
	metrics  *metrics.Manager
	cache    *freecache.Cache
}

func NewRetriever(embedder Embedder, searcher Searcher, metricsManager *metrics.Manager) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		metrics:  metricsManager,
		cache:    freecache.NewCache(embeddingCacheSize),
	}
}

// Retrieve returns up to matchCount passages for the query (DefaultMatchCount when
// matchCount <= 0). It never fails.
func (r *Retriever) Retrieve(ctx context.Context, query string, matchCount int) (result Result) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "knowledge.retrieve")
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			result = r.degrade(ReasonPanic, fmt.Errorf("panic: %v", rec))
		}
		span.SetAttributes(attribute.Int("chunks", len(result.Chunks)))
	}()

	if matchCount <= 0 {
		matchCount = DefaultMatchCount
	}
	span.SetAttributes(attribute.Int("match_count", matchCount))

	normalized := normalizeQuery(query)
	if normalized == "" {
		return r.degrade(ReasonEmptyQuery, nil)
	}

	text := strings.TrimSpace(query)
	embedding, err := r.embed(ctx, normalized, text)
	if err != nil {
		return r.degrade(ReasonEmbedding, err)
	}

	chunks, err := r.searcher.HybridSearch(ctx, HybridQuery{
		Text:       text,
		Embedding:  embedding,
		MatchCount: matchCount,
	})
	if err != nil {
		return r.degrade(ReasonSearch, err)
	}

	chunks = FilterByScore(chunks, ScoreThreshold)
	if len(chunks) == 0 {
		return r.degrade(ReasonNoMatch, nil)
	}

	ids := make([]int64, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	return Result{
		Chunks:    chunks,
		Formatted: Format(chunks),
		ChunkIDs:  ids,
	}
}

func (r *Retriever) degrade(reason string, err error) Result {
	if r.metrics != nil {
		r.metrics.CounterRetrievalDegraded.WithLabelValues(reason).Inc()
	}
	if err != nil {
		log.WithField("reason", reason).Errorf("knowledge retrieval degraded: %s", err)
	} else {
		log.WithField("reason", reason).Debug("knowledge retrieval found nothing")
	}
	return emptyResult()
}

// embed caches by the normalized query and sends the trimmed query text to the embedder.
func (r *Retriever) embed(ctx context.Context, normalized, text string) ([]float32, error) {
	key := []byte("embedding::" + normalized)
	if cached, err := r.cache.Get(key); err == nil {
		if v, ok := decodeVector(cached); ok {
			return v, nil
		}
	}

	v, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(v) != EmbeddingDimensions {
		return nil, fmt.Errorf("unexpected embedding size %d", len(v))
	}

	if err := r.cache.Set(key, encodeVector(v), embeddingCacheExpire); err != nil {
		log.Warnf("cache query embedding: %s", err)
	}
	return v, nil
}

// FilterByScore drops chunks scored below threshold. When no chunk carries a score the
// input is returned unfiltered; chunks without a score are always kept.
func FilterByScore(chunks []Chunk, threshold float64) []Chunk {
	scored := false
	for _, c := range chunks {
		if c.Score != nil {
			scored = true
			break
		}
	}
	if !scored {
		return chunks
	}

	kept := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Score == nil || *c.Score >= threshold {
			kept = append(kept, c)
		}
	}
	return kept
}

// Format renders chunks as numbered source blocks for the model prompt.
func Format(chunks []Chunk) string {
	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		parts = append(parts, fmt.Sprintf("### Source %d: %s\n**Section**: %s\n\n%s", i+1, c.SourceName, c.Section, c.Content))
	}
	return strings.Join(parts, chunkSeparator)
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) ([]float32, bool) {
	if len(b)%4 != 0 || len(b)/4 != EmbeddingDimensions {
		return nil, false
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, true
}
