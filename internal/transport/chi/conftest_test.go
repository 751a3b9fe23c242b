package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	healthuc "github.com/kailas-cloud/insighthire/internal/usecase/health"
	searchuc "github.com/kailas-cloud/insighthire/internal/usecase/search"
)

type mockSearch struct {
	searchFn      func(ctx context.Context, query string) (searchuc.Response, error)
	saveFn        func(ctx context.Context, jobID, candidateID string) error
	getJobFn      func(ctx context.Context, id string) (domjob.Job, error)
	moreResultsFn func(ctx context.Context, jobID string) ([]searchuc.Match, error)
}

func (m *mockSearch) Search(ctx context.Context, query string) (searchuc.Response, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return searchuc.Response{}, nil
}

func (m *mockSearch) SaveCandidate(ctx context.Context, jobID, candidateID string) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, jobID, candidateID)
	}
	return nil
}

func (m *mockSearch) GetJob(ctx context.Context, id string) (domjob.Job, error) {
	if m.getJobFn != nil {
		return m.getJobFn(ctx, id)
	}
	return domjob.Job{}, nil
}

func (m *mockSearch) MoreResults(ctx context.Context, jobID string) ([]searchuc.Match, error) {
	if m.moreResultsFn != nil {
		return m.moreResultsFn(ctx, jobID)
	}
	return nil, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(s SearchService, h HealthService) http.Handler {
	if h == nil {
		h = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	r := chi.NewRouter()
	NewServer(s, h, nil).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
