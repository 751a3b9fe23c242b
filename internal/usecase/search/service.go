package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/insighthire/internal/domain"
	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	"github.com/kailas-cloud/insighthire/internal/domain/rank"
	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
	logpkg "github.com/kailas-cloud/insighthire/internal/logger"
)

// DefaultResultLimit is how many candidates a search returns.
const DefaultResultLimit = 10

// Match is one returned candidate.
type Match struct {
	Profile   domcand.Profile
	Score     float64
	TopSkills []string
}

// SkippedCandidate is a stored resume the ranker could not score.
type SkippedCandidate struct {
	ID     string
	Reason string
}

// Response is the outcome of one search.
type Response struct {
	JobID   string
	Title   string
	Mode    mode.Mode
	Results []Match
	Skipped []SkippedCandidate
}

// Service runs candidate searches and manages the resulting jobs.
type Service struct {
	cands  CandidateRepository
	jobs   JobRepository
	ranker Ranker
	embed  Embedder
	titler Titler

	mode        mode.Mode
	resultLimit int
	topSkills   int
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMode sets the ranking mode used for every search.
func WithMode(m mode.Mode) Option {
	return func(s *Service) { s.mode = m }
}

// WithResultLimit sets how many ranked candidates are returned.
func WithResultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.resultLimit = n
		}
	}
}

// WithTopSkills attaches the n skills closest to the query to each match. 0 disables it.
func WithTopSkills(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.topSkills = n
		}
	}
}

// WithTitler enables job title generation.
func WithTitler(t Titler) Option {
	return func(s *Service) { s.titler = t }
}

// WithLogger sets the fallback logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a search service.
func New(cands CandidateRepository, jobs JobRepository, ranker Ranker, embed Embedder, opts ...Option) *Service {
	s := &Service{
		cands:       cands,
		jobs:        jobs,
		ranker:      ranker,
		embed:       embed,
		mode:        mode.VectorMath,
		resultLimit: DefaultResultLimit,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search ranks every stored resume against the query, keeps the leading
// matches and records the session as a job.
func (s *Service) Search(ctx context.Context, query string) (Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	log := logpkg.FromContextOr(ctx, s.logger)

	cands, err := s.cands.List(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("list candidates: %w", err)
	}

	out := rank.Outcome{Mode: s.mode}
	var qv []float32
	byID := make(map[string]*domcand.Candidate, len(cands))
	if len(cands) > 0 {
		emb, err := s.embed.Embed(ctx, query)
		if err != nil {
			return Response{}, &domain.UpstreamEmbeddingError{Err: err}
		}
		domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)
		qv = emb.Embedding

		items := make([]rank.Item, len(cands))
		for i := range cands {
			c := &cands[i]
			items[i] = rank.Item{ID: c.ID, Vector: c.Embedding, Content: c.ResumeText}
			if _, dup := byID[c.ID]; !dup {
				byID[c.ID] = c
			}
		}

		out, err = s.ranker.Rank(ctx, rank.Query{Text: query, Vector: qv}, items, s.mode)
		if err != nil {
			return Response{}, fmt.Errorf("rank candidates: %w", err)
		}
	}

	top := out.Top(s.resultLimit)
	matches := make([]Match, 0, len(top))
	for _, r := range top {
		c := byID[r.ID()]
		m := Match{Profile: c.Profile(), Score: r.Score()}
		if s.topSkills > 0 {
			m.TopSkills, err = s.topSkillsFor(ctx, qv, c.Skills, s.topSkills)
			if err != nil {
				return Response{}, fmt.Errorf("top skills for %s: %w", c.ID, err)
			}
		}
		matches = append(matches, m)
	}

	title := s.title(ctx, log, query)

	j, err := domjob.New(query, title, out.IDs(), s.now())
	if err != nil {
		return Response{}, err
	}
	jobID, err := s.jobs.Create(ctx, &j)
	if err != nil {
		return Response{}, fmt.Errorf("create job: %w", err)
	}

	skipped := make([]SkippedCandidate, len(out.Skipped))
	for i, sk := range out.Skipped {
		skipped[i] = SkippedCandidate{ID: sk.ID, Reason: sk.Reason}
	}
	if len(skipped) > 0 {
		log.Warn("candidates skipped during ranking",
			zap.Int("count", len(skipped)),
			zap.Strings("ids", out.SkippedIDs()),
		)
	}

	return Response{
		JobID:   jobID,
		Title:   title,
		Mode:    out.Mode,
		Results: matches,
		Skipped: skipped,
	}, nil
}

// TopSkills returns the n skills most similar to the query. When there are
// no more than n skills they are returned unchanged; n <= 0 yields none.
func (s *Service) TopSkills(ctx context.Context, query string, skills []string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(skills) <= n {
		return skills, nil
	}
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, &domain.UpstreamEmbeddingError{Err: err}
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)
	return s.topSkillsFor(ctx, emb.Embedding, skills, n)
}

func (s *Service) topSkillsFor(ctx context.Context, qv []float32, skills []string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(skills) <= n {
		return skills, nil
	}
	items := make([]rank.Item, len(skills))
	for i, sk := range skills {
		items[i] = rank.Item{ID: sk, Content: sk}
	}
	out, err := s.ranker.Rank(ctx, rank.Query{Vector: qv}, items, mode.VectorMath)
	if err != nil {
		return nil, err
	}
	top := out.Top(n)
	names := make([]string, len(top))
	for i, r := range top {
		names[i] = r.ID()
	}
	return names, nil
}

// title never fails the search: provider errors degrade to an empty title.
func (s *Service) title(ctx context.Context, log *zap.Logger, description string) string {
	if s.titler == nil {
		return ""
	}
	t, err := s.titler.Title(ctx, description)
	if err != nil {
		log.Warn("job title generation failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(t)
}

// SaveCandidate records that a recruiter picked candidateID for jobID.
func (s *Service) SaveCandidate(ctx context.Context, jobID, candidateID string) error {
	jobID = strings.TrimSpace(jobID)
	candidateID = strings.TrimSpace(candidateID)
	if jobID == "" || candidateID == "" {
		return fmt.Errorf("%w: job_id and person_id are required", domain.ErrInvalidQuery)
	}

	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("get job: %w", err)
	}

	ok, err := s.cands.Exists(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("check candidate: %w", err)
	}
	if !ok {
		return domain.ErrCandidateNotFound
	}

	if err := s.jobs.AddSelected(ctx, jobID, candidateID); err != nil {
		return fmt.Errorf("save candidate: %w", err)
	}
	return nil
}

// GetJob returns a stored search session.
func (s *Service) GetJob(ctx context.Context, id string) (domjob.Job, error) {
	j, err := s.jobs.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return domjob.Job{}, err
		}
		return domjob.Job{}, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// MoreResults would page past the first result set of a job.
func (s *Service) MoreResults(_ context.Context, _ string) ([]Match, error) {
	return nil, fmt.Errorf("more results: %w", domain.ErrNotImplemented)
}
