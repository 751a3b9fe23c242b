// Package ranking scores a candidate set against a query and orders it by similarity.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/insighthire/internal/domain"
	"github.com/kailas-cloud/insighthire/internal/domain/rank"
	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
	"github.com/kailas-cloud/insighthire/internal/domain/similarity"
	logpkg "github.com/kailas-cloud/insighthire/internal/logger"
	"github.com/kailas-cloud/insighthire/internal/metrics"
)

// Service ranks candidates. Per-candidate failures (dimension mismatch, zero-norm
// vector, duplicate ID, missing vector) skip that candidate and are reported in
// Outcome.Skipped; call-level failures abort without results.
type Service struct {
	embed   Embedder
	workers int
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithWorkers bounds the scoring pool. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a ranking service.
func New(embed Embedder, opts ...Option) *Service {
	s := &Service{
		embed:   embed,
		workers: runtime.NumCPU(),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// work is one candidate that made it past validation, tagged with its input position.
type work struct {
	idx  int
	item rank.Item
}

type slot struct {
	done  bool
	score float64
	err   error
}

type skippedAt struct {
	idx int
	rank.Skipped
}

// Rank scores every item against q and returns the full list ordered by descending
// score, ties kept in input order. Truncation is left to the caller (Outcome.Top).
func (s *Service) Rank(ctx context.Context, q rank.Query, items []rank.Item, m mode.Mode) (rank.Outcome, error) {
	if !m.IsValid() {
		metrics.RankingCallsTotal.WithLabelValues(string(m), "rejected").Inc()
		return rank.Outcome{}, fmt.Errorf("%w: %q", domain.ErrUnknownRankingMode, m)
	}
	if !m.IsImplemented() {
		metrics.RankingCallsTotal.WithLabelValues(string(m), "rejected").Inc()
		return rank.Outcome{Mode: m}, fmt.Errorf("ranking mode %q: %w", m, domain.ErrNotImplemented)
	}
	if err := q.Validate(); err != nil {
		metrics.RankingCallsTotal.WithLabelValues(string(m), "rejected").Inc()
		return rank.Outcome{Mode: m}, err
	}

	out := rank.Outcome{Mode: m}
	if len(items) == 0 {
		metrics.RankingCallsTotal.WithLabelValues(string(m), "ok").Inc()
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		out.Cancelled = true
		metrics.RankingCallsTotal.WithLabelValues(string(m), "cancelled").Inc()
		return out, fmt.Errorf("%w: %w", domain.ErrRankingCancelled, err)
	}

	qv, err := s.queryVector(ctx, q)
	if err != nil {
		metrics.RankingCallsTotal.WithLabelValues(string(m), "upstream_error").Inc()
		return rank.Outcome{Mode: m}, err
	}

	queue, skipped, err := s.prepare(ctx, items)
	if err != nil {
		metrics.RankingCallsTotal.WithLabelValues(string(m), "upstream_error").Inc()
		return rank.Outcome{Mode: m}, err
	}

	start := time.Now()
	slots := s.score(ctx, qv, queue)

	results := make([]rank.Result, 0, len(queue))
	pending := 0
	for i, w := range queue {
		sl := slots[i]
		if !sl.done {
			pending++
			continue
		}
		if sl.err != nil {
			skipped = append(skipped, skippedAt{idx: w.idx, Skipped: rank.Skipped{
				ID: w.item.ID, Reason: skipReason(sl.err), Err: sl.err,
			}})
			continue
		}
		results = append(results, rank.NewResult(w.item.ID, sl.score, w.item.Content))
	}

	// results are in input order, so a stable sort breaks ties by input position
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	sort.SliceStable(skipped, func(i, j int) bool {
		return skipped[i].idx < skipped[j].idx
	})

	out.Results = results
	out.Skipped = make([]rank.Skipped, len(skipped))
	for i, sk := range skipped {
		out.Skipped[i] = sk.Skipped
	}

	metrics.RankingDuration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())
	metrics.RankingCandidatesTotal.WithLabelValues("scored").Add(float64(len(results)))
	metrics.RankingCandidatesTotal.WithLabelValues("skipped").Add(float64(len(out.Skipped)))

	log := logpkg.FromContextOr(ctx, s.logger)
	if pending > 0 {
		out.Cancelled = true
		metrics.RankingCallsTotal.WithLabelValues(string(m), "cancelled").Inc()
		log.Warn("ranking cancelled",
			zap.Int("scored", len(results)),
			zap.Int("pending", pending),
		)
		return out, fmt.Errorf("%w: %w", domain.ErrRankingCancelled, context.Cause(ctx))
	}

	metrics.RankingCallsTotal.WithLabelValues(string(m), "ok").Inc()
	log.Debug("ranking complete",
		zap.String("mode", string(m)),
		zap.Int("candidates", len(items)),
		zap.Int("scored", len(results)),
		zap.Int("skipped", len(out.Skipped)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// queryVector returns the precomputed vector or embeds the query text.
func (s *Service) queryVector(ctx context.Context, q rank.Query) ([]float32, error) {
	qv := q.Vector
	if len(qv) == 0 {
		res, err := s.embed.Embed(ctx, q.Text)
		if err != nil {
			return nil, &domain.UpstreamEmbeddingError{Err: err}
		}
		domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
		qv = res.Embedding
	}
	if len(qv) == 0 {
		return nil, &domain.UpstreamEmbeddingError{
			Err: fmt.Errorf("empty query embedding: %w", domain.ErrEmbeddingProviderError),
		}
	}
	if n := similarity.Norm(qv); n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("query vector: %w", &domain.DegenerateVectorError{Which: "query"})
	}
	return qv, nil
}

// prepare drops duplicates and vectorless items, and embeds item content where no vector was given.
func (s *Service) prepare(ctx context.Context, items []rank.Item) ([]work, []skippedAt, error) {
	queue := make([]work, 0, len(items))
	var skipped []skippedAt
	var toEmbed []int // positions in queue
	seen := make(map[string]struct{}, len(items))

	for i, it := range items {
		if _, dup := seen[it.ID]; dup {
			skipped = append(skipped, skippedAt{idx: i, Skipped: rank.Skipped{
				ID: it.ID, Reason: rank.ReasonDuplicateID,
			}})
			continue
		}
		seen[it.ID] = struct{}{}

		if len(it.Vector) == 0 {
			if it.Content == "" {
				skipped = append(skipped, skippedAt{idx: i, Skipped: rank.Skipped{
					ID: it.ID, Reason: rank.ReasonMissingVector,
				}})
				continue
			}
			toEmbed = append(toEmbed, len(queue))
		}
		queue = append(queue, work{idx: i, item: it})
	}

	if len(toEmbed) == 0 {
		return queue, skipped, nil
	}

	texts := make([]string, len(toEmbed))
	for i, qi := range toEmbed {
		texts[i] = queue[qi].item.Content
	}
	res, err := domain.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		return nil, nil, &domain.UpstreamEmbeddingError{Err: err}
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	for i, qi := range toEmbed {
		queue[qi].item.Vector = res.Embeddings[i]
	}
	return queue, skipped, nil
}

// score runs Cosine over the queue with a bounded pool. Each worker writes only its own
// slot; after cancellation the remaining slots stay !done.
func (s *Service) score(ctx context.Context, qv []float32, queue []work) []slot {
	slots := make([]slot, len(queue))

	workers := s.workers
	if workers > len(queue) {
		workers = len(queue)
	}

	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				if ctx.Err() != nil {
					continue
				}
				sim, err := similarity.Cosine(qv, queue[i].item.Vector)
				slots[i] = slot{done: true, score: sim, err: err}
			}
		}()
	}

feed:
	for i := range queue {
		select {
		case <-ctx.Done():
			break feed
		case next <- i:
		}
	}
	close(next)
	wg.Wait()

	return slots
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDimensionMismatch):
		return rank.ReasonDimensionMismatch
	case errors.Is(err, domain.ErrDegenerateVector):
		return rank.ReasonDegenerateVector
	default:
		return "error"
	}
}
