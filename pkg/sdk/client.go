package insighthire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/insighthire/internal/db"
	dbRedis "github.com/kailas-cloud/insighthire/internal/db/redis"
	"github.com/kailas-cloud/insighthire/internal/domain"
	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	"github.com/kailas-cloud/insighthire/internal/domain/rank"
	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
	candidaterepo "github.com/kailas-cloud/insighthire/internal/repository/candidate"
	jobrepo "github.com/kailas-cloud/insighthire/internal/repository/job"
	healthuc "github.com/kailas-cloud/insighthire/internal/usecase/health"
	"github.com/kailas-cloud/insighthire/internal/usecase/ranking"
	searchuc "github.com/kailas-cloud/insighthire/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "insighthire:"
)

type rankUseCase interface {
	Rank(ctx context.Context, q rank.Query, items []rank.Item, m mode.Mode) (rank.Outcome, error)
}

type searchUseCase interface {
	Search(ctx context.Context, query string) (searchuc.Response, error)
	SaveCandidate(ctx context.Context, jobID, candidateID string) error
	GetJob(ctx context.Context, id string) (domjob.Job, error)
}

type candidateStore interface {
	Upsert(ctx context.Context, c *domcand.Candidate) (bool, error)
}

// Client is the insighthire library entry point.
type Client struct {
	store      db.Store
	embed      domain.Embedder
	ranker     rankUseCase
	searchSvc  searchUseCase
	candidates candidateStore
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("insighthire: database address required (use WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("insighthire: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("insighthire: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	// Without an embedder only precomputed vectors can be ranked.
	var domEmb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	ranker := ranking.New(domEmb, ranking.WithWorkers(cfg.workers))
	candRepo := candidaterepo.New(store, cfg.keyPrefix, nil)

	searchOpts := []searchuc.Option{
		searchuc.WithResultLimit(cfg.resultLimit),
		searchuc.WithTopSkills(cfg.topSkills),
	}
	if cfg.titler != nil {
		searchOpts = append(searchOpts, searchuc.WithTitler(cfg.titler))
	}
	searchSvc := searchuc.New(candRepo, jobrepo.New(store, cfg.keyPrefix), ranker, domEmb, searchOpts...)

	var hc healthuc.EmbeddingChecker
	if cfg.embedder != nil {
		hc = domEmb.(*embedderAdapter)
	}

	return &Client{
		store:      store,
		embed:      domEmb,
		ranker:     ranker,
		searchSvc:  searchSvc,
		candidates: candRepo,
		healthSvc:  healthuc.New(store, hc),
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Rank orders resumes by similarity to query without touching storage.
// A cancelled ctx returns the partial ranking together with ErrRankingCancelled.
func (c *Client) Rank(ctx context.Context, query string, resumes []Resume) (res RankResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rank", start, err) }()

	items := make([]rank.Item, len(resumes))
	for i := range resumes {
		items[i] = rank.Item{
			ID:      resumes[i].ID,
			Vector:  resumes[i].Embedding,
			Content: resumes[i].Text,
		}
	}

	out, err := c.ranker.Rank(ctx, rank.Query{Text: query}, items, mode.VectorMath)
	res = rankResultFromDomain(&out)
	if err != nil {
		return res, fmt.Errorf("rank: %w", err)
	}
	return res, nil
}

// Search ranks every stored resume against query and records the session as a job.
func (c *Client) Search(ctx context.Context, query string) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	resp, err := c.searchSvc.Search(ctx, query)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return searchResultFromDomain(&resp), nil
}

// SaveCandidate marks a stored resume as selected for a job.
func (c *Client) SaveCandidate(ctx context.Context, jobID, candidateID string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("save_candidate", start, err) }()

	if err = c.searchSvc.SaveCandidate(ctx, jobID, candidateID); err != nil {
		return fmt.Errorf("save candidate: %w", err)
	}
	return nil
}

// GetJob returns a stored search session.
func (c *Client) GetJob(ctx context.Context, id string) (job Job, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_job", start, err) }()

	j, err := c.searchSvc.GetJob(ctx, id)
	if err != nil {
		return Job{}, fmt.Errorf("get job: %w", err)
	}
	return jobFromDomain(&j), nil
}

// UpsertResumes embeds resumes that lack an embedding and stores all of them.
// Returns how many were newly created.
func (c *Client) UpsertResumes(ctx context.Context, resumes []Resume) (created int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert_resumes", start, err) }()

	cands := make([]domcand.Candidate, len(resumes))
	var (
		idx   []int
		texts []string
	)
	for i := range resumes {
		cand, err := domcand.New(resumes[i].toDomain(), resumes[i].Text, resumes[i].Embedding)
		if err != nil {
			return 0, fmt.Errorf("resume %d: %w", i, err)
		}
		cands[i] = cand
		if !cand.HasEmbedding() {
			idx = append(idx, i)
			texts = append(texts, cand.ResumeText)
		}
	}

	if len(texts) > 0 {
		emb, err := domain.EmbedAll(ctx, c.embed, texts)
		if err != nil {
			return 0, fmt.Errorf("embed resumes: %w", err)
		}
		for j, i := range idx {
			cands[i].Embedding = emb.Embeddings[j]
		}
	}

	for i := range cands {
		isNew, err := c.candidates.Upsert(ctx, &cands[i])
		if err != nil {
			return created, fmt.Errorf("store resume %s: %w", cands[i].ID, err)
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// BatchEmbed uses the inner batch endpoint when there is one.
func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		return domain.BatchFallback(ctx, a, texts)
	}
	r, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// HealthCheck embeds a short probe string.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if _, err := a.inner.Embed(ctx, "health"); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"insighthire: embedder not configured (use WithEmbedder): %w", domain.ErrEmbeddingProviderError)
}
