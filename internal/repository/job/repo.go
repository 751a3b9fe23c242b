// Package job persists search sessions as RedisJSON documents.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/insighthire/internal/db"
	"github.com/kailas-cloud/insighthire/internal/domain"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
)

// store is the consumer interface for jobs (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONArrAddUnique(ctx context.Context, key, path string, value []byte) (bool, error)
}

// Repo implements usecase/search.JobRepository over Redis.
type Repo struct {
	store  store
	prefix string
	newID  func() string
}

// New creates a job repository. Keys are <prefix>job:<uuid>.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix, newID: uuid.NewString}
}

// Create stores j under a fresh ID and returns it.
func (r *Repo) Create(ctx context.Context, j *domjob.Job) (string, error) {
	stored := *j
	stored.ID = r.newID()
	if stored.SelectedCandidates == nil {
		stored.SelectedCandidates = []string{}
	}
	if stored.SearchResultIDs == nil {
		stored.SearchResultIDs = []string{}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}

	key := r.key(stored.ID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return "", fmt.Errorf("json.set %s: %w", key, err)
	}
	return stored.ID, nil
}

// Get returns a job by ID.
func (r *Repo) Get(ctx context.Context, id string) (domjob.Job, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key, ".")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domjob.Job{}, domain.ErrJobNotFound
		}
		return domjob.Job{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	var j domjob.Job
	if err := json.Unmarshal(raw, &j); err != nil {
		return domjob.Job{}, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return j, nil
}

// AddSelected appends candidateID to the job's selections. Selecting the
// same candidate twice is a no-op, also under concurrent saves.
func (r *Repo) AddSelected(ctx context.Context, jobID, candidateID string) error {
	val, err := json.Marshal(candidateID)
	if err != nil {
		return fmt.Errorf("marshal candidate id: %w", err)
	}
	key := r.key(jobID)
	if _, err := r.store.JSONArrAddUnique(ctx, key, "$.selected_candidates", val); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrJobNotFound
		}
		return fmt.Errorf("json.arrappend %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "job:" + id
}
