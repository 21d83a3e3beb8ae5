package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/backend"
	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
	"github.com/kailas-cloud/kickdex/internal/metrics"
	"github.com/kailas-cloud/kickdex/internal/query"
)

// MultiSearch executes queries in one round trip, plus one more round for the queries whose
// misspelling threshold was not met. Results are in input order. Per-query backend failures are
// carried on Results.Err; only a failure of the whole round trip is returned.
func (s *Service) MultiSearch(ctx context.Context, queries []*query.Query) ([]*result.Results, error) {
	out := make([]*result.Results, len(queries))

	pending := make([]int, len(queries))
	for i := range queries {
		pending[i] = i
	}

	for round := 0; round < 2 && len(pending) > 0; round++ {
		resps, err := s.msearch(ctx, queries, pending)
		if err != nil {
			return nil, wrapBackendError(err, nil)
		}

		var retry []int
		for j, i := range pending {
			q := queries[i]
			resp := resps[j]
			q.MarkExecuted()

			if be := backend.FromResponse(resp); be != nil {
				out[i] = q.Fail(classify(be, q.Index()))
				continue
			}
			if round == 0 && q.ShouldRetry(resp) {
				if err := q.PrepareRetry(); err != nil {
					out[i] = q.Fail(err)
					continue
				}
				metrics.MisspellingRetriesTotal.Inc()
				retry = append(retry, i)
				continue
			}
			out[i] = q.Finalize(resp)
		}

		if len(retry) > 0 {
			s.logger.Debug("Retrying searches with misspellings", zap.Int("count", len(retry)))
		}
		pending = retry
	}
	return out, nil
}

func (s *Service) msearch(ctx context.Context, queries []*query.Query, pick []int) ([]*result.Response, error) {
	reqs := make([]backend.SearchRequest, len(pick))
	for j, i := range pick {
		reqs[j] = searchRequest(queries[i])
	}

	ctx, cancel := context.WithTimeout(ctx, backend.Deadline(s.settings.SearchTimeout, s.settings.Timeout, len(reqs)))
	defer cancel()

	resps, err := s.backend.MultiSearch(ctx, reqs)
	if err != nil {
		return nil, err //nolint:wrapcheck // classified by the caller
	}
	if len(resps) != len(reqs) {
		return nil, fmt.Errorf("msearch: got %d responses for %d requests", len(resps), len(reqs))
	}
	return resps, nil
}
