// Package postgres stores search sessions in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kailas-cloud/insighthire/internal/domain"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id                  TEXT PRIMARY KEY,
	job_description     TEXT NOT NULL,
	title               TEXT NOT NULL DEFAULT '',
	selected_candidates TEXT[] NOT NULL DEFAULT '{}',
	search_result_ids   TEXT[] NOT NULL DEFAULT '{}',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Repo implements usecase/search.JobRepository over database/sql.
type Repo struct {
	db    *sql.DB
	newID func() string
}

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

// New creates a job repository on an open connection.
func New(conn *sql.DB) *Repo {
	return &Repo{db: conn, newID: uuid.NewString}
}

// Ping checks the connection, for health reporting.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// EnsureSchema creates the jobs table if it is missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure jobs schema: %w", err)
	}
	return nil
}

// Create stores j under a fresh ID and returns it.
func (r *Repo) Create(ctx context.Context, j *domjob.Job) (string, error) {
	id := r.newID()
	selected := j.SelectedCandidates
	if selected == nil {
		selected = []string{}
	}
	results := j.SearchResultIDs
	if results == nil {
		results = []string{}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, job_description, title, selected_candidates, search_result_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, j.Description, j.Title, pq.Array(selected), pq.Array(results), j.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

// Get returns a job by ID.
func (r *Repo) Get(ctx context.Context, id string) (domjob.Job, error) {
	var j domjob.Job
	err := r.db.QueryRowContext(ctx,
		`SELECT id, job_description, title, selected_candidates, search_result_ids, created_at
		 FROM jobs WHERE id = $1`, id).
		Scan(&j.ID, &j.Description, &j.Title,
			pq.Array(&j.SelectedCandidates), pq.Array(&j.SearchResultIDs), &j.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domjob.Job{}, domain.ErrJobNotFound
		}
		return domjob.Job{}, fmt.Errorf("select job %s: %w", id, err)
	}
	j.CreatedAt = j.CreatedAt.UTC()
	return j, nil
}

// AddSelected appends candidateID to the job's selections unless it is
// already there.
func (r *Repo) AddSelected(ctx context.Context, jobID, candidateID string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`WITH upd AS (
			UPDATE jobs SET selected_candidates = array_append(selected_candidates, $2)
			WHERE id = $1 AND NOT ($2 = ANY(selected_candidates))
			RETURNING id
		)
		SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`,
		jobID, candidateID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("add selected to job %s: %w", jobID, err)
	}
	if !exists {
		return domain.ErrJobNotFound
	}
	return nil
}
