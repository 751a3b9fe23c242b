package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/insighthire/internal/db"
	"github.com/kailas-cloud/insighthire/internal/domain"
	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
)

const mgetChunk = 100

// store is the consumer interface for resumes (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores resumes as RedisJSON documents under <prefix>resume:<id>.
type Repo struct {
	store  store
	prefix string
	logger *zap.Logger
}

// New creates a candidate repository.
func New(s store, prefix string, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, prefix: prefix, logger: logger}
}

// List returns every stored resume ordered by key. Records that fail to
// decode are logged and left out.
func (r *Repo) List(ctx context.Context) ([]domcand.Candidate, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"resume:*")
	if err != nil {
		return nil, fmt.Errorf("scan resumes: %w", err)
	}
	// SCAN may return a key more than once
	slices.Sort(keys)
	keys = slices.Compact(keys)

	out := make([]domcand.Candidate, 0, len(keys))
	for start := 0; start < len(keys); start += mgetChunk {
		end := min(start+mgetChunk, len(keys))
		chunk := keys[start:end]

		docs, err := r.store.JSONMGet(ctx, chunk, ".")
		if err != nil {
			return nil, fmt.Errorf("json.mget resumes: %w", err)
		}
		for i, raw := range docs {
			if raw == nil {
				continue // deleted between SCAN and MGET
			}
			c, err := decode(raw)
			if err != nil {
				r.logger.Warn("skipping malformed resume",
					zap.String("key", chunk[i]), zap.Error(err))
				continue
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// Get returns a resume by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcand.Candidate, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key, ".")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcand.Candidate{}, domain.ErrCandidateNotFound
		}
		return domcand.Candidate{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return decode(raw)
}

// Exists reports whether a resume with the given ID is stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	key := r.key(id)
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	return ok, nil
}

// Upsert creates or replaces a resume. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, c *domcand.Candidate) (bool, error) {
	key := r.key(c.ID)
	data, err := json.Marshal(toRecord(c))
	if err != nil {
		return false, fmt.Errorf("marshal resume: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "resume:" + strings.TrimSpace(id)
}

func decode(raw []byte) (domcand.Candidate, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domcand.Candidate{}, fmt.Errorf("unmarshal resume: %w", err)
	}
	return rec.toDomain()
}
