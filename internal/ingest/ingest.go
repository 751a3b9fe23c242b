// Package ingest loads resume records into the candidate store.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/insighthire/internal/domain"
	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
)

// DefaultBatchSize is how many resumes are embedded and stored per round.
const DefaultBatchSize = 64

const maxLineBytes = 4 * domcand.MaxResumeSize

// CandidateStore persists candidates.
type CandidateStore interface {
	Upsert(ctx context.Context, c *domcand.Candidate) (bool, error)
}

// Record is one JSONL input line. Resume text comes from ResumeText or,
// when that is empty, from ResumeFile resolved against the input's directory.
type Record struct {
	domcand.Profile
	ResumeText string    `json:"resume_text,omitempty"`
	ResumeFile string    `json:"resume_file,omitempty"`
	Embedding  []float32 `json:"resume_embedding,omitempty"`
}

// LineError describes a record that could not be loaded.
type LineError struct {
	Line int
	ID   string
	Err  error
}

func (e LineError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.ID, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Report summarizes one load.
type Report struct {
	Read     int
	Created  int
	Updated  int
	Embedded int
	Tokens   int
	Failed   []LineError
}

// Loader embeds and stores resume records.
type Loader struct {
	store     CandidateStore
	embed     domain.Embedder
	batchSize int
	dryRun    bool
	logger    *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithBatchSize sets the number of records per embed/store round.
func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithDryRun validates and embeds records without storing them.
func WithDryRun(v bool) Option {
	return func(l *Loader) { l.dryRun = v }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader.
func New(store CandidateStore, embed domain.Embedder, opts ...Option) *Loader {
	l := &Loader{
		store:     store,
		embed:     embed,
		batchSize: DefaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

type pending struct {
	line int
	cand domcand.Candidate
}

// Load reads JSONL records from r. Bad records are reported in Report.Failed
// and do not stop the load; embedding and storage errors do.
func (l *Loader) Load(ctx context.Context, r io.Reader, baseDir string) (Report, error) {
	var rep Report

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	batch := make([]pending, 0, l.batchSize)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		rep.Read++

		c, err := parseRecord([]byte(raw), baseDir)
		if err != nil {
			le := LineError{Line: line, ID: c.ID, Err: err}
			l.logger.Warn("skipping resume record", zap.Int("line", line), zap.Error(err))
			rep.Failed = append(rep.Failed, le)
			continue
		}

		batch = append(batch, pending{line: line, cand: c})
		if len(batch) == l.batchSize {
			if err := l.flush(ctx, batch, &rep); err != nil {
				return rep, err
			}
			batch = batch[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return rep, fmt.Errorf("read records at line %d: %w", line+1, err)
	}
	if len(batch) > 0 {
		if err := l.flush(ctx, batch, &rep); err != nil {
			return rep, err
		}
	}

	l.logger.Info("resume load finished",
		zap.Int("read", rep.Read),
		zap.Int("created", rep.Created),
		zap.Int("updated", rep.Updated),
		zap.Int("embedded", rep.Embedded),
		zap.Int("failed", len(rep.Failed)),
		zap.Bool("dry_run", l.dryRun),
	)
	return rep, nil
}

func parseRecord(raw []byte, baseDir string) (domcand.Candidate, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domcand.Candidate{}, fmt.Errorf("%w: %v", domain.ErrInvalidCandidate, err)
	}

	text := rec.ResumeText
	if strings.TrimSpace(text) == "" && rec.ResumeFile != "" {
		path := rec.ResumeFile
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		extracted, err := ExtractFile(path)
		if err != nil {
			return domcand.Candidate{ID: rec.ID}, err
		}
		text = extracted
	}

	c, err := domcand.New(rec.Profile, text, rec.Embedding)
	if err != nil {
		return domcand.Candidate{ID: rec.ID}, err
	}
	return c, nil
}

func (l *Loader) flush(ctx context.Context, batch []pending, rep *Report) error {
	var (
		idx   []int
		texts []string
	)
	for i := range batch {
		if !batch[i].cand.HasEmbedding() {
			idx = append(idx, i)
			texts = append(texts, batch[i].cand.ResumeText)
		}
	}

	if len(texts) > 0 {
		res, err := domain.EmbedAll(ctx, l.embed, texts)
		if err != nil {
			return fmt.Errorf("embed resumes at line %d: %w", batch[idx[0]].line, err)
		}
		for j, i := range idx {
			batch[i].cand.Embedding = res.Embeddings[j]
		}
		rep.Embedded += len(texts)
		rep.Tokens += res.TotalTokens
	}

	if l.dryRun {
		return nil
	}

	for i := range batch {
		created, err := l.store.Upsert(ctx, &batch[i].cand)
		if err != nil {
			return fmt.Errorf("store resume %s at line %d: %w", batch[i].cand.ID, batch[i].line, err)
		}
		if created {
			rep.Created++
		} else {
			rep.Updated++
		}
	}
	return nil
}
