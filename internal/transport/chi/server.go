// Package chi serves the admin HTTP API: searches, record changes, reindexing and queue control.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain"
	healthuc "github.com/kailas-cloud/kickdex/internal/usecase/health"
)

// Error codes of ErrorResponse.
const (
	CodeBadRequest         = "bad_request"
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeConfiguration      = "configuration_error"
	CodeMissingIndex       = "missing_index"
	CodeInvalidQuery       = "invalid_query"
	CodeUnsupportedVersion = "unsupported_version"
	CodeImportFailed       = "import_failed"
	CodeBackendUnavailable = "backend_unavailable"
	CodeEmbeddingProvider  = "embedding_provider_error"
	CodeInternal           = "internal_error"
)

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Deps are the services behind the API.
type Deps struct {
	Search  Searcher
	Indices Indices
	Reindex Reindexer
	Records Records
	Queue   Queue
	Drain   Drainer
	Health  HealthChecker
}

// Server is the admin API.
type Server struct {
	search        Searcher
	indices       Indices
	reindex       Reindexer
	records       Records
	queue         Queue
	drain         Drainer
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the admin API server.
func NewServer(d Deps, logger *zap.Logger) *Server {
	s := &Server{
		search:  d.Search,
		indices: d.Indices,
		reindex: d.Reindex,
		records: d.Records,
		queue:   d.Queue,
		drain:   d.Drain,
		health:  d.Health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrConfiguration, http.StatusBadRequest, CodeConfiguration),
		sentinelHandler(domain.ErrMissingIndex, http.StatusNotFound, CodeMissingIndex),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrUnsupportedVersion, http.StatusNotImplemented, CodeUnsupportedVersion),
		sentinelHandler(domain.ErrImport, http.StatusBadGateway, CodeImportFailed),
		sentinelHandler(domain.ErrTransientTransport, http.StatusServiceUnavailable, CodeBackendUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
	}
	return s
}

// Register mounts the routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/models", s.ListModels)
	r.Post("/msearch", s.MultiSearch)

	r.Route("/models/{model}", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/reindex", s.ReindexRecords)

		r.Get("/records/{id}", s.GetRecord)
		r.Put("/records/{id}", s.PutRecord)
		r.Delete("/records/{id}", s.DeleteRecord)

		r.Get("/queue", s.QueueLength)
		r.Delete("/queue", s.ClearQueue)
		r.Post("/queue/drain", s.DrainQueue)
	})

	r.Get("/indices/{index}/reindex-status", s.ReindexStatus)
}

// Handler returns a router with the routes mounted and no middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// clientMessage returns the message of a typed domain error without the wrapping context, or the
// sentinel text for everything else.
func clientMessage(err error) string {
	var (
		cfg *domain.ConfigurationError
		mi  *domain.MissingIndexError
		iq  *domain.InvalidQueryError
		uv  *domain.UnsupportedVersionError
		ie  *domain.ImportError
	)
	switch {
	case errors.As(err, &cfg):
		return cfg.Error()
	case errors.As(err, &mi):
		return mi.Error()
	case errors.As(err, &iq):
		return iq.Error()
	case errors.As(err, &uv):
		return uv.Error()
	case errors.As(err, &ie):
		return ie.Error()
	case errors.Is(err, domain.ErrNotFound):
		return err.Error()
	}

	sentinels := []error{domain.ErrTransientTransport, domain.ErrEmbeddingProviderError}
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := clientMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
