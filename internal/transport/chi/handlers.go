package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
	"github.com/kailas-cloud/kickdex/internal/query"
	"github.com/kailas-cloud/kickdex/internal/repository/source"
	"github.com/kailas-cloud/kickdex/internal/usecase/reindex"
)

// MultiSearchRequest batches searches over any models.
type MultiSearchRequest struct {
	Searches []MultiSearchItem `json:"searches"`
}

// MultiSearchItem is one search of a batch.
type MultiSearchItem struct {
	Model string `json:"model"`
	SearchRequest
}

// RecordRequest is the body of PUT /models/{model}/records/{id}.
type RecordRequest struct {
	Routing string         `json:"routing,omitempty"`
	Data    map[string]any `json:"data"`
	Skip    bool           `json:"skip,omitempty"`
}

// ReindexRequest is the body of POST /models/{model}/reindex.
type ReindexRequest struct {
	IDs []string `json:"ids"`
	// Callbacks overrides the model's mode for this call.
	Callbacks string `json:"callbacks,omitempty"`
	Method    string `json:"method,omitempty"`
	// Batched splits the ids into tracked background batches.
	Batched bool `json:"batched,omitempty"`
}

// ModelInfo describes a registered model.
type ModelInfo struct {
	Model     string `json:"model"`
	Index     string `json:"index"`
	Callbacks string `json:"callbacks"`
	BatchSize int    `json:"batch_size"`
}

// ListModels handles GET /models.
func (s *Server) ListModels(w http.ResponseWriter, _ *http.Request) {
	models := s.indices.Models()
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		idx, err := s.indices.Get(m)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		out = append(out, ModelInfo{
			Model:     m,
			Index:     idx.Name(),
			Callbacks: string(idx.Options().Callbacks),
			BatchSize: idx.BatchSize(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": out})
}

// Search handles POST /models/{model}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	opts, err := req.Options()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.search.Search(r.Context(), chi.URLParam(r, "model"), req.Term, opts)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(res))
}

// MultiSearch handles POST /msearch. A failed search is reported in its own entry.
func (s *Server) MultiSearch(w http.ResponseWriter, r *http.Request) {
	var req MultiSearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Searches) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "searches is required")
		return
	}

	queries := make([]*query.Query, 0, len(req.Searches))
	for _, item := range req.Searches {
		idx, err := s.indices.Get(item.Model)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		opts, err := item.Options()
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		q, err := s.search.Compile(r.Context(), idx, item.Term, opts)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		queries = append(queries, q)
	}

	results, err := s.search.MultiSearch(r.Context(), queries)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out := make([]SearchResponse, len(results))
	for i, res := range results {
		out[i] = searchResponse(res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": out})
}

// GetRecord handles GET /models/{model}/records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	if _, err := s.indices.Get(model); err != nil {
		s.handleDomainError(w, err)
		return
	}
	doc, err := s.records.Get(r.Context(), model, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PutRecord handles PUT /models/{model}/records/{id}: the record is stored, then reindexed the way
// the model's callbacks (or ?callbacks=) say.
func (s *Server) PutRecord(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	idx, err := s.indices.Get(model)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	mode, err := callbacksParam(r.URL.Query().Get("callbacks"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req RecordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc := &source.Document{ID: chi.URLParam(r, "id"), Routing: req.Routing, Data: req.Data, Skip: req.Skip}
	if err := s.records.Put(r.Context(), model, doc); err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.reindex.Reindex(r.Context(), idx, []record.Record{doc}, mode, reindex.Options{Single: true}); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteRecord handles DELETE /models/{model}/records/{id}. Deleting a missing record still removes
// it from the index.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	id := chi.URLParam(r, "id")
	idx, err := s.indices.Get(model)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	mode, err := callbacksParam(r.URL.Query().Get("callbacks"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ref := record.Ref{ID: id}
	doc, err := s.records.Get(r.Context(), model, id)
	switch {
	case err == nil:
		ref.Routing = doc.Routing
	case !errors.Is(err, domain.ErrNotFound):
		s.handleDomainError(w, err)
		return
	}

	if err := s.records.Delete(r.Context(), model, id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.reindex.Reindex(r.Context(), idx, []record.Record{ref}, mode, reindex.Options{Single: true}); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReindexRecords handles POST /models/{model}/reindex. Ids that no longer load are removed from the
// index.
func (s *Server) ReindexRecords(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	idx, err := s.indices.Get(model)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req ReindexRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "ids is required")
		return
	}
	mode, err := callbacksParam(req.Callbacks)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if req.Batched {
		batchIDs, err := s.reindex.ReindexAsync(r.Context(), idx, req.IDs, req.Method)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"index": idx.Name(), "batch_ids": batchIDs})
		return
	}

	loaded, err := s.records.Loader(model).Load(r.Context(), req.IDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	found := make(map[string]bool, len(loaded))
	for _, rec := range loaded {
		found[rec.SearchID()] = true
	}
	records := loaded
	for _, id := range req.IDs {
		if !found[id] {
			records = append(records, record.Ref{ID: id})
			found[id] = true
		}
	}

	opts := reindex.Options{Method: req.Method, Single: len(records) == 1}
	if err := s.reindex.Reindex(r.Context(), idx, records, mode, opts); err != nil {
		s.handleDomainError(w, err)
		return
	}
	status := http.StatusOK
	if effective(mode, idx) != index.CallbacksInline {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{"index": idx.Name(), "records": len(records)})
}

// QueueLength handles GET /models/{model}/queue.
func (s *Server) QueueLength(w http.ResponseWriter, r *http.Request) {
	idx, err := s.indices.Get(chi.URLParam(r, "model"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	n, err := s.queue.Length(r.Context(), idx.Name())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"queue": idx.Name(), "length": n})
}

// ClearQueue handles DELETE /models/{model}/queue.
func (s *Server) ClearQueue(w http.ResponseWriter, r *http.Request) {
	idx, err := s.indices.Get(chi.URLParam(r, "model"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.queue.Clear(r.Context(), idx.Name()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DrainQueue handles POST /models/{model}/queue/drain. With ?inline=true the batches are reindexed
// in the request; otherwise they are dispatched as jobs.
func (s *Server) DrainQueue(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	inline, err := cast.ToBoolE(queryOr(r, "inline", "false"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "inline must be a boolean")
		return
	}

	j := job.ProcessQueue{Class: model, IndexName: r.URL.Query().Get("index_name"), Inline: inline}
	batches, err := s.drain.Drain(r.Context(), j)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": batches, "inline": inline})
}

// ReindexStatus handles GET /indices/{index}/reindex-status.
func (s *Server) ReindexStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.reindex.ReindexStatus(r.Context(), chi.URLParam(r, "index"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func callbacksParam(v string) (index.Callbacks, error) {
	if v == "" {
		return "", nil
	}
	mode := index.Callbacks(v)
	if !mode.IsValid() {
		return "", domain.NewConfigurationError("unknown callbacks mode %q", v)
	}
	return mode, nil
}

func effective(mode index.Callbacks, idx *index.Index) index.Callbacks {
	if mode == "" {
		return idx.Options().Callbacks
	}
	return mode
}

func queryOr(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}
