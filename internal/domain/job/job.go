// Package job defines the payloads handed to the background scheduler.
package job

// Kind names a job payload type.
type Kind string

// Job kinds.
const (
	KindReindex      Kind = "reindex"
	KindBulkReindex  Kind = "bulk_reindex"
	KindProcessBatch Kind = "process_batch"
	KindProcessQueue Kind = "process_queue"
)

// Job is a unit of background work.
type Job interface {
	Kind() Kind
}

// Reindex reindexes one record.
type Reindex struct {
	Class     string `json:"class_name"`
	ID        string `json:"id"`
	Method    string `json:"method_name,omitempty"`
	Routing   string `json:"routing,omitempty"`
	IndexName string `json:"index_name,omitempty"`
}

// BulkReindex reindexes a set of records by id.
type BulkReindex struct {
	Class     string   `json:"class_name"`
	IDs       []string `json:"record_ids"`
	IndexName string   `json:"index_name,omitempty"`
	Method    string   `json:"method_name,omitempty"`
	BatchID   string   `json:"batch_id,omitempty"`
}

// ProcessBatch reindexes raw queue entries.
type ProcessBatch struct {
	Class     string   `json:"class_name"`
	RecordIDs []string `json:"record_ids"`
	IndexName string   `json:"index_name,omitempty"`
}

// ProcessQueue drains a model's reindex queue.
type ProcessQueue struct {
	Class     string `json:"class_name"`
	IndexName string `json:"index_name,omitempty"`
	Inline    bool   `json:"inline,omitempty"`
}

func (Reindex) Kind() Kind      { return KindReindex }
func (BulkReindex) Kind() Kind  { return KindBulkReindex }
func (ProcessBatch) Kind() Kind { return KindProcessBatch }
func (ProcessQueue) Kind() Kind { return KindProcessQueue }
