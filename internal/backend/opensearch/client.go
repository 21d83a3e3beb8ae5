// Package opensearch implements backend.Client over the OpenSearch REST API.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/kailas-cloud/kickdex/internal/backend"
	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/batch"
	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
	"github.com/kailas-cloud/kickdex/internal/metrics"
)

// Compile-time check: Client implements backend.Client.
var _ backend.Client = (*Client)(nil)

const (
	contentJSON   = "application/json"
	contentNDJSON = "application/x-ndjson"
)

// Config holds connection parameters for the backend.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	MaxRetries int
	// Transport overrides the HTTP transport, used by tests.
	Transport http.RoundTripper
}

// Client is an OpenSearch/Elasticsearch backend client.
type Client struct {
	os *opensearch.Client
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	// retries belong to the callers (one retry on transient errors at flush time)
	c, err := opensearch.NewClient(opensearch.Config{
		Addresses:    cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries == 0,
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Client{os: c}, nil
}

// Search runs one search.
func (c *Client) Search(ctx context.Context, req backend.SearchRequest) (*result.Response, error) {
	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	q := url.Values{}
	for k, v := range req.Params {
		q.Set(k, v)
	}
	if req.Routing != "" {
		q.Set("routing", req.Routing)
	}
	if req.Scroll != "" {
		q.Set("scroll", req.Scroll)
	}
	if req.SearchPipeline != "" {
		q.Set("search_pipeline", req.SearchPipeline)
	}

	path := "/_search"
	if req.Index != "" {
		path = "/" + req.Index + "/_search"
	}

	var resp result.Response
	if err := c.perform(ctx, "search", http.MethodPost, path, q, contentJSON, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// msearchParams are the request params a multi-search header line accepts.
var msearchParams = map[string]bool{
	"allow_no_indices":             true,
	"allow_partial_search_results": true,
	"ccs_minimize_roundtrips":      true,
	"expand_wildcards":             true,
	"ignore_unavailable":           true,
	"preference":                   true,
	"request_cache":                true,
	"search_type":                  true,
}

// msearchHeader builds the header line of one search in a multi-search body.
func msearchHeader(r backend.SearchRequest) (map[string]string, error) {
	if r.Scroll != "" {
		return nil, domain.NewConfigurationError("scroll is not supported in a multi-search")
	}
	h := make(map[string]string, len(r.Params)+3)
	for k, v := range r.Params {
		if !msearchParams[k] {
			return nil, domain.NewConfigurationError("request param %q is not supported in a multi-search", k)
		}
		h[k] = v
	}
	if r.Index != "" {
		h["index"] = r.Index
	}
	if r.Routing != "" {
		h["routing"] = r.Routing
	}
	if r.SearchPipeline != "" {
		h["search_pipeline"] = r.SearchPipeline
	}
	return h, nil
}

// MultiSearch runs all requests in one round trip. Request params go into each header line; params the
// header cannot carry fail the call with a configuration error.
func (c *Client) MultiSearch(ctx context.Context, reqs []backend.SearchRequest) ([]*result.Response, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range reqs {
		h, err := msearchHeader(r)
		if err != nil {
			return nil, err
		}
		if err := enc.Encode(h); err != nil {
			return nil, fmt.Errorf("encode msearch header: %w", err)
		}
		if err := enc.Encode(r.Body); err != nil {
			return nil, fmt.Errorf("encode msearch body: %w", err)
		}
	}

	var out struct {
		Responses []*result.Response `json:"responses"`
	}
	err := c.perform(ctx, "msearch", http.MethodPost, "/_msearch", nil, contentNDJSON, buf.Bytes(), &out)
	if err != nil {
		return nil, err
	}
	if len(out.Responses) != len(reqs) {
		return nil, fmt.Errorf("msearch: got %d responses for %d requests", len(out.Responses), len(reqs))
	}
	return out.Responses, nil
}

type bulkMeta struct {
	Index   string `json:"_index,omitempty"`
	ID      string `json:"_id"`
	Routing string `json:"routing,omitempty"`
}

type bulkItem struct {
	ID     string               `json:"_id"`
	Status int                  `json:"status"`
	Error  *result.BackendError `json:"error,omitempty"`
}

// Bulk sends index, update and delete items in one request.
func (c *Client) Bulk(ctx context.Context, items []batch.Item) (*batch.Response, error) {
	if len(items) == 0 {
		return &batch.Response{}, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, it := range items {
		meta := map[string]bulkMeta{
			string(it.Action()): {Index: it.Index(), ID: it.ID(), Routing: it.Routing()},
		}
		if err := enc.Encode(meta); err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}
		var err error
		switch it.Action() {
		case batch.ActionIndex:
			err = enc.Encode(it.Doc())
		case batch.ActionUpdate:
			err = enc.Encode(map[string]any{"doc": it.Doc()})
		}
		if err != nil {
			return nil, fmt.Errorf("encode bulk document: %w", err)
		}
	}

	var out struct {
		Errors bool                        `json:"errors"`
		Items  []map[batch.Action]bulkItem `json:"items"`
	}
	err := c.perform(ctx, "bulk", http.MethodPost, "/_bulk", nil, contentNDJSON, buf.Bytes(), &out)
	if err != nil {
		return nil, err
	}

	resp := &batch.Response{Errors: out.Errors, Results: make([]batch.Result, 0, len(out.Items))}
	for i, entry := range out.Items {
		for action, it := range entry {
			id := it.ID
			if id == "" && i < len(items) {
				id = items[i].ID()
			}
			if it.Error != nil {
				resp.Results = append(resp.Results,
					batch.NewError(id, action, it.Status, it.Error.Type, it.Error.Reason))
				continue
			}
			resp.Results = append(resp.Results, batch.NewOK(id, action, it.Status))
		}
	}
	return resp, nil
}

// Ping checks that the cluster answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.perform(ctx, "ping", http.MethodHead, "/", nil, "", nil, nil)
}

// perform sends one request and decodes a 2xx reply into out. Connection failures come back as
// domain.TransientTransportError, non-2xx replies as *backend.Error.
func (c *Client) perform(
	ctx context.Context, op, method, path string, query url.Values, contentType string, body []byte, out any,
) error {
	u := path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	res, err := c.os.Perform(req)
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(op, "error").Inc()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		return &domain.TransientTransportError{Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &domain.TransientTransportError{Err: err}
	}

	metrics.BackendRequestsTotal.WithLabelValues(op, strconv.Itoa(res.StatusCode)).Inc()
	if res.StatusCode >= http.StatusMultipleChoices {
		return decodeError(res.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	e := &backend.Error{Status: status, Body: strings.TrimSpace(string(raw))}
	var env struct {
		Error *result.BackendError `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Error != nil {
		e.Type = env.Error.Type
		e.Reason = env.Error.Reason
	}
	return e
}
