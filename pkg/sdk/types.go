package kickdex

import "encoding/json"

// SearchRequest is the body of a search. Where, Order and Aggs take the same JSON shapes as the API.
type SearchRequest struct {
	Term         string           `json:"term"`
	Fields       []any            `json:"fields,omitempty"`
	Match        string           `json:"match,omitempty"`
	Operator     string           `json:"operator,omitempty"`
	Where        map[string]any   `json:"where,omitempty"`
	Order        []map[string]any `json:"order,omitempty"`
	Aggs         []map[string]any `json:"aggs,omitempty"`
	BoostBy      []map[string]any `json:"boost_by,omitempty"`
	Misspellings any              `json:"misspellings,omitempty"`
	Suggest      any              `json:"suggest,omitempty"`
	Highlight    map[string]any   `json:"highlight,omitempty"`
	Select       []string         `json:"select,omitempty"`
	Load         bool             `json:"load,omitempty"`
	Page         int              `json:"page,omitempty"`
	PerPage      int              `json:"per_page,omitempty"`
	Limit        int              `json:"limit,omitempty"`
	Offset       int              `json:"offset,omitempty"`
	Routing      string           `json:"routing,omitempty"`
	Body         map[string]any   `json:"body,omitempty"`
}

// SearchResult is one page of hits.
type SearchResult struct {
	Total        int                        `json:"total"`
	Took         int                        `json:"took"`
	Page         int                        `json:"page"`
	PerPage      int                        `json:"per_page"`
	TotalPages   int                        `json:"total_pages"`
	Misspellings bool                       `json:"misspellings"`
	Hits         []Hit                      `json:"hits"`
	Aggs         map[string]json.RawMessage `json:"aggs,omitempty"`
	Suggestions  []string                   `json:"suggestions,omitempty"`
	ScrollID     string                     `json:"scroll_id,omitempty"`
	// Error is set on a failed entry of a multi search.
	Error string `json:"error,omitempty"`
}

// Hit is one search hit.
type Hit struct {
	ID        string            `json:"id"`
	Index     string            `json:"index"`
	Score     *float64          `json:"score,omitempty"`
	Source    map[string]any    `json:"source,omitempty"`
	Highlight map[string]string `json:"highlight,omitempty"`
}

// Record is a source record of a model.
type Record struct {
	ID      string         `json:"id"`
	Routing string         `json:"routing,omitempty"`
	Data    map[string]any `json:"data"`
	Skip    bool           `json:"skip,omitempty"`
}

// Model describes a registered model.
type Model struct {
	Model     string `json:"model"`
	Index     string `json:"index"`
	Callbacks string `json:"callbacks"`
	BatchSize int    `json:"batch_size"`
}

// Callbacks modes.
const (
	CallbacksInline = "inline"
	CallbacksBulk   = "bulk"
	CallbacksAsync  = "async"
	CallbacksQueue  = "queue"
	CallbacksFalse  = "false"
)

// ReindexRequest reindexes records by id.
type ReindexRequest struct {
	IDs []string `json:"ids"`
	// Callbacks overrides the model's mode; empty keeps it.
	Callbacks string `json:"callbacks,omitempty"`
	// Method reindexes one named method's partial document.
	Method string `json:"method,omitempty"`
	// Batched dispatches tracked background batches.
	Batched bool `json:"batched,omitempty"`
}

// ReindexResult is the outcome of Reindex. BatchIDs is set for batched requests, Records otherwise.
type ReindexResult struct {
	Index    string   `json:"index"`
	Records  int      `json:"records,omitempty"`
	BatchIDs []string `json:"batch_ids,omitempty"`
	// Accepted means the work continues in the background.
	Accepted bool `json:"-"`
}

// ReindexStatus reports the progress of a batched reindex.
type ReindexStatus struct {
	Completed   bool `json:"completed"`
	BatchesLeft int  `json:"batches_left"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}
