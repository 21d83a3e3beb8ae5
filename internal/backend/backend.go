// Package backend defines the contract of the search backend (OpenSearch or Elasticsearch).
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/kickdex/internal/domain/batch"
	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
)

// SearchRequest is one search call.
type SearchRequest struct {
	Index          string
	Body           map[string]any
	Routing        string
	Scroll         string
	SearchPipeline string
	Params         map[string]string
}

// Client talks to the search backend.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*result.Response, error)
	// MultiSearch returns one response per request, in order. Per-request failures are carried on the
	// response, not returned as an error.
	MultiSearch(ctx context.Context, reqs []SearchRequest) ([]*result.Response, error)
	Bulk(ctx context.Context, items []batch.Item) (*batch.Response, error)
	Ping(ctx context.Context) error
}

// Error is a non-2xx backend reply.
type Error struct {
	Status int
	Type   string
	Reason string
	// Body is the raw reply, used for message matching.
	Body string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message())
}

// Message returns the raw body, or the reason when there is no body.
func (e *Error) Message() string {
	if e.Body != "" {
		return e.Body
	}
	if e.Type != "" {
		return e.Type + ": " + e.Reason
	}
	return e.Reason
}

// FromResponse builds an Error from a failed sub-response of a multi-search.
func FromResponse(resp *result.Response) *Error {
	if resp == nil || resp.Error == nil {
		return nil
	}
	e := &Error{Status: resp.Status, Type: resp.Error.Type, Reason: resp.Error.Reason}
	msg := e.Message()
	for _, rc := range resp.Error.RootCause {
		msg += "; " + rc.Error()
	}
	e.Body = msg
	return e
}

// Deadline is the timeout of a call carrying n searches: base per search, capped at ceiling.
func Deadline(base, ceiling time.Duration, n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := base * time.Duration(n)
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}
