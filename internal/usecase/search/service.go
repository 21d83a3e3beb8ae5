package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/backend"
	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/search/request"
	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
	"github.com/kailas-cloud/kickdex/internal/metrics"
	"github.com/kailas-cloud/kickdex/internal/query"
)

// DefaultTimeout is the ceiling of one backend call.
const DefaultTimeout = 10 * time.Second

// Settings bound the time spent in the backend.
type Settings struct {
	// Timeout caps a whole multi-search.
	Timeout time.Duration
	// SearchTimeout is the budget of one search. Defaults to Timeout.
	SearchTimeout time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.SearchTimeout <= 0 {
		s.SearchTimeout = s.Timeout
	}
	return s
}

// Service compiles and executes searches.
type Service struct {
	backend  Backend
	indices  Indices
	embed    Embedder
	settings Settings
	logger   *zap.Logger
}

// New creates a search service. embed may be nil when no model uses kNN.
func New(b Backend, indices Indices, embed Embedder, settings Settings, logger *zap.Logger) *Service {
	return &Service{
		backend:  b,
		indices:  indices,
		embed:    embed,
		settings: settings.withDefaults(),
		logger:   logger,
	}
}

// Compile validates opts and builds the query. A kNN clause without a vector gets the embedding of term.
func (s *Service) Compile(
	ctx context.Context, idx *index.Index, term string, opts request.Options,
) (*query.Query, error) {
	if opts.KNN != nil && len(opts.KNN.Vector) == 0 && term != "" && term != "*" {
		if s.embed == nil {
			return nil, domain.NewConfigurationError("knn requires a vector when no embedding provider is configured")
		}
		res, err := s.embed.Embed(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("vectorize term: %w", err)
		}
		knn := *opts.KNN
		knn.Vector = res.Embedding
		opts.KNN = &knn
	}
	return query.New(idx, term, opts, query.Settings{SearchTimeout: s.settings.SearchTimeout})
}

// Search resolves the model's index, then compiles and executes one search.
func (s *Service) Search(
	ctx context.Context, model, term string, opts request.Options,
) (*result.Results, error) {
	idx, err := s.indices.Get(model)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	q, err := s.Compile(ctx, idx, term, opts)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, q)
}

// Execute runs a compiled query, re-running it once with fuzzy matching when the misspelling
// threshold is not met. Backend failures are returned classified.
func (s *Service) Execute(ctx context.Context, q *query.Query) (*result.Results, error) {
	resp, err := s.run(ctx, q)
	if err != nil {
		return nil, err
	}

	if q.ShouldRetry(resp) {
		metrics.MisspellingRetriesTotal.Inc()
		s.logger.Debug("Retrying search with misspellings",
			zap.String("index", q.Params().Index),
			zap.Int("total", resp.Total()),
		)
		if err := q.PrepareRetry(); err != nil {
			return nil, fmt.Errorf("prepare retry: %w", err)
		}
		if resp, err = s.run(ctx, q); err != nil {
			return nil, err
		}
	}
	return q.Finalize(resp), nil
}

func (s *Service) run(ctx context.Context, q *query.Query) (*result.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.settings.SearchTimeout)
	defer cancel()

	resp, err := s.backend.Search(ctx, searchRequest(q))
	if err != nil {
		return nil, wrapBackendError(err, q.Index())
	}
	q.MarkExecuted()
	return resp, nil
}

func searchRequest(q *query.Query) backend.SearchRequest {
	p := q.Params()
	return backend.SearchRequest{
		Index:          p.Index,
		Body:           q.Body(),
		Routing:        p.Routing,
		Scroll:         p.Scroll,
		SearchPipeline: p.SearchPipeline,
		Params:         p.Extra,
	}
}

func wrapBackendError(err error, idx *index.Index) error {
	if c := classify(err, idx); c != err {
		return c
	}
	return fmt.Errorf("search: %w", err)
}
