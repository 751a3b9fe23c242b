package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/insighthire/internal/domain"
	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
	healthuc "github.com/kailas-cloud/insighthire/internal/usecase/health"
	logpkg "github.com/kailas-cloud/insighthire/internal/logger"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        SearchService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, health HealthService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidCandidate, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnknownRankingMode, http.StatusBadRequest, codeUnknownRankingMode),
		sentinelHandler(domain.ErrCandidateNotFound, http.StatusNotFound, codeCandidateNotFound),
		sentinelHandler(domain.ErrJobNotFound, http.StatusNotFound, codeJobNotFound),
		sentinelHandler(domain.ErrUpstreamEmbedding, http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrTitleProviderError, http.StatusBadGateway, codeTitleProviderError),
		sentinelHandler(domain.ErrDegenerateVector, http.StatusUnprocessableEntity, codeDegenerateQuery),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusUnprocessableEntity, codeDegenerateQuery),
		sentinelHandler(domain.ErrRankingCancelled, http.StatusServiceUnavailable, codeRankingCancelled),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, codeNotImplemented),
	}
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.Docs)
	r.Get("/filters", s.Filters)
	r.Post("/search", s.Search)
	r.Post("/save_person_for_job", s.SaveCandidate)
	r.Get("/jobs/{id}", s.GetJob)
	r.Post("/get_more_results", s.MoreResults)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Docs handles GET /.
func (s *Server) Docs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, apiDocs)
}

// Filters handles GET /filters.
func (s *Server) Filters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domcand.Filters())
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if ok := s.decodeBody(w, r, &req); !ok {
		return
	}
	if req.Query == "" {
		req.Query = r.URL.Query().Get("query")
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.search.Search(ctx, req.Query)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromUC(&resp))
}

// SaveCandidate handles POST /save_person_for_job.
func (s *Server) SaveCandidate(w http.ResponseWriter, r *http.Request) {
	var req saveCandidateRequest
	if ok := s.decodeBody(w, r, &req); !ok {
		return
	}
	q := r.URL.Query()
	if req.JobID == "" {
		req.JobID = q.Get("job_id")
	}
	if req.PersonID == "" {
		req.PersonID = q.Get("person_id")
	}

	if err := s.search.SaveCandidate(r.Context(), req.JobID, req.PersonID); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Person added to job."})
}

// GetJob handles GET /jobs/{id}.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.search.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobToResponse(&j))
}

// MoreResults handles POST /get_more_results.
func (s *Server) MoreResults(w http.ResponseWriter, r *http.Request) {
	var req moreResultsRequest
	if ok := s.decodeBody(w, r, &req); !ok {
		return
	}
	if req.JobID == "" {
		req.JobID = r.URL.Query().Get("job_id")
	}

	if _, err := s.search.MoreResults(r.Context(), req.JobID); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	// unreachable until pagination exists
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// decodeBody reads an optional JSON body. An empty body leaves v untouched
// so callers can fall back to query parameters.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		logpkg.FromContextOr(r.Context(), s.logger).Warn("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return false
	}
	return true
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidCandidate,
		domain.ErrUnknownRankingMode,
		domain.ErrCandidateNotFound,
		domain.ErrJobNotFound,
		domain.ErrUpstreamEmbedding,
		domain.ErrEmbeddingProviderError,
		domain.ErrTitleProviderError,
		domain.ErrDegenerateVector,
		domain.ErrDimensionMismatch,
		domain.ErrRankingCancelled,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
