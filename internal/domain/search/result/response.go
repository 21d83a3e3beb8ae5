package result

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Response is a decoded backend search response.
type Response struct {
	Took         int                       `json:"took"`
	TimedOut     bool                      `json:"timed_out"`
	ScrollID     string                    `json:"_scroll_id,omitempty"`
	Hits         Hits                      `json:"hits"`
	Aggregations map[string]any            `json:"aggregations,omitempty"`
	Suggest      map[string][]SuggestEntry `json:"suggest,omitempty"`
	Error        *BackendError             `json:"error,omitempty"`
	Status       int                       `json:"status,omitempty"`
}

// Total returns the total hit count.
func (r *Response) Total() int { return r.Hits.Total.Value }

// Hits is the hits section of a response.
type Hits struct {
	Total    Total    `json:"total"`
	MaxScore *float64 `json:"max_score"`
	Hits     []Hit    `json:"hits"`
}

// Total is the hit count. Older backends send a bare number, newer ones {value, relation}.
type Total struct {
	Value    int    `json:"value"`
	Relation string `json:"relation,omitempty"`
}

// UnmarshalJSON accepts both total encodings.
func (t *Total) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode total: %w", err)
	}
	switch v := raw.(type) {
	case map[string]any:
		n, err := cast.ToIntE(v["value"])
		if err != nil {
			return fmt.Errorf("decode total value: %w", err)
		}
		t.Value = n
		t.Relation = cast.ToString(v["relation"])
	case nil:
		t.Value = 0
	default:
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("decode total: %w", err)
		}
		t.Value = n
		t.Relation = "eq"
	}
	return nil
}

// Hit is one search hit.
type Hit struct {
	Index     string              `json:"_index"`
	ID        string              `json:"_id"`
	Score     *float64            `json:"_score"`
	Routing   string              `json:"_routing,omitempty"`
	Source    map[string]any      `json:"_source,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
	Sort      []any               `json:"sort,omitempty"`
}

// SuggestEntry is one entry of a suggester result.
type SuggestEntry struct {
	Text    string          `json:"text"`
	Options []SuggestOption `json:"options"`
}

// SuggestOption is one suggestion.
type SuggestOption struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// BackendError is the error object of a failed (sub-)response.
type BackendError struct {
	Type      string         `json:"type"`
	Reason    string         `json:"reason"`
	RootCause []BackendError `json:"root_cause,omitempty"`
}

// UnmarshalJSON accepts the object form and the legacy plain string form.
func (e *BackendError) UnmarshalJSON(data []byte) error {
	var s string
	if json.Unmarshal(data, &s) == nil {
		e.Reason = s
		return nil
	}
	type plain BackendError
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode backend error: %w", err)
	}
	*e = BackendError(p)
	return nil
}

func (e *BackendError) Error() string {
	if e.Type == "" {
		return e.Reason
	}
	return e.Type + ": " + e.Reason
}
