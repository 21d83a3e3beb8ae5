package kickdex

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
)

// Client talks to a kickdex server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("kickdex: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("kickdex: parse base URL: %w", err)
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    hc,
		obs:     obs,
	}, nil
}

// Models lists the registered models.
func (c *Client) Models(ctx context.Context) (models []Model, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "models", start, err) }()

	var out struct {
		Models []Model `json:"models"`
	}
	if _, err = c.do(ctx, http.MethodGet, "/models", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// Search runs one search against a model.
func (c *Client) Search(ctx context.Context, model string, req *SearchRequest) (res *SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "search", start, err) }()

	res = &SearchResult{}
	if _, err = c.do(ctx, http.MethodPost, modelPath(model, "search"), req, res); err != nil {
		return nil, err
	}
	return res, nil
}

// MultiSearchItem is one search of a MultiSearch batch.
type MultiSearchItem struct {
	Model string
	*SearchRequest
}

// MarshalJSON flattens the request next to the model name.
func (m MultiSearchItem) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if m.SearchRequest != nil {
		raw, err := json.Marshal(m.SearchRequest)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
	}
	body["model"] = m.Model
	return json.Marshal(body)
}

// MultiSearch runs several searches in one round trip. A failed search sets Error on its own result.
func (c *Client) MultiSearch(ctx context.Context, items ...MultiSearchItem) (res []*SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "multi_search", start, err) }()

	var out struct {
		Responses []*SearchResult `json:"responses"`
	}
	body := map[string]any{"searches": items}
	if _, err = c.do(ctx, http.MethodPost, "/msearch", body, &out); err != nil {
		return nil, err
	}
	return out.Responses, nil
}

// GetRecord fetches a source record.
func (c *Client) GetRecord(ctx context.Context, model, id string) (rec *Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "get_record", start, err) }()

	rec = &Record{}
	if _, err = c.do(ctx, http.MethodGet, modelPath(model, "records", id), nil, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PutRecord stores a record and reindexes it. callbacks overrides the model's mode; pass "" to keep it.
func (c *Client) PutRecord(ctx context.Context, model string, rec Record, callbacks string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "put_record", start, err) }()

	p := modelPath(model, "records", rec.ID) + callbacksQuery(callbacks)
	_, err = c.do(ctx, http.MethodPut, p, rec, nil)
	return err
}

// DeleteRecord removes a record from the source and the index.
func (c *Client) DeleteRecord(ctx context.Context, model, id, callbacks string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "delete_record", start, err) }()

	_, err = c.do(ctx, http.MethodDelete, modelPath(model, "records", id)+callbacksQuery(callbacks), nil, nil)
	return err
}

// Reindex reindexes records by id. Ids that no longer exist are removed from the index.
func (c *Client) Reindex(ctx context.Context, model string, req ReindexRequest) (res *ReindexResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "reindex", start, err) }()

	res = &ReindexResult{}
	status, err := c.do(ctx, http.MethodPost, modelPath(model, "reindex"), req, res)
	if err != nil {
		return nil, err
	}
	res.Accepted = status == http.StatusAccepted
	return res, nil
}

// QueueLength returns the number of pending record references of a model's index.
func (c *Client) QueueLength(ctx context.Context, model string) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "queue_length", start, err) }()

	var out struct {
		Length int `json:"length"`
	}
	if _, err = c.do(ctx, http.MethodGet, modelPath(model, "queue"), nil, &out); err != nil {
		return 0, err
	}
	return out.Length, nil
}

// ClearQueue drops every pending reference of a model's index.
func (c *Client) ClearQueue(ctx context.Context, model string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "clear_queue", start, err) }()

	_, err = c.do(ctx, http.MethodDelete, modelPath(model, "queue"), nil, nil)
	return err
}

// DrainQueue moves pending references into reindex batches and returns how many were made.
// With inline the batches are processed before the call returns. indexName targets another index.
func (c *Client) DrainQueue(ctx context.Context, model string, inline bool, indexName string) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "drain_queue", start, err) }()

	q := url.Values{}
	q.Set("inline", strconv.FormatBool(inline))
	if indexName != "" {
		q.Set("index_name", indexName)
	}
	var out struct {
		Batches int `json:"batches"`
	}
	if _, err = c.do(ctx, http.MethodPost, modelPath(model, "queue", "drain")+"?"+q.Encode(), nil, &out); err != nil {
		return 0, err
	}
	return out.Batches, nil
}

// ReindexStatus reports the progress of batched reindexing into an index.
func (c *Client) ReindexStatus(ctx context.Context, indexName string) (st ReindexStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "reindex_status", start, err) }()

	p := "/indices/" + url.PathEscape(indexName) + "/reindex-status"
	_, err = c.do(ctx, http.MethodGet, p, nil, &st)
	return st, err
}

// Health reports server health. An unhealthy server is a status, not an error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, &hs)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable && hs.Status != "" {
		return hs, nil
	}
	return hs, err
}

// do sends a JSON request and decodes a 2xx body into out. Non-2xx bodies become *APIError; the
// body is still decoded into out when it fits.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("kickdex: encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, fmt.Errorf("kickdex: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("kickdex: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("kickdex: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		if out != nil {
			_ = json.Unmarshal(raw, out)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("kickdex: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func modelPath(model string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/models/")
	b.WriteString(url.PathEscape(model))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func callbacksQuery(mode string) string {
	if mode == "" {
		return ""
	}
	return "?callbacks=" + url.QueryEscape(mode)
}
