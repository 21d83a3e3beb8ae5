package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/kickdex/internal/db"
	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
)

var keyPrefix = domain.KeyPrefix + "records:"

// store is the consumer interface for records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
}

// Repo stores records per model.
type Repo struct {
	store store
}

// New creates a record repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func key(model, id string) string {
	return keyPrefix + model + ":" + id
}

// Put stores a record, replacing any previous version.
func (r *Repo) Put(ctx context.Context, model string, doc *Document) error {
	if doc.ID == "" {
		return domain.NewConfigurationError("record id is required")
	}
	if doc.Data == nil {
		doc.Data = map[string]any{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := r.store.JSONSet(ctx, key(model, doc.ID), "$", data); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// Get returns one record.
func (r *Repo) Get(ctx context.Context, model, id string) (*Document, error) {
	data, err := r.store.JSONGet(ctx, key(model, id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("record %s/%s: %w", model, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal record %s/%s: %w", model, id, err)
	}
	return &doc, nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (r *Repo) Delete(ctx context.Context, model, id string) error {
	if err := r.store.Del(ctx, key(model, id)); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// Loader returns the record loader of a model.
func (r *Repo) Loader(model string) record.Loader {
	return &loader{repo: r, model: model}
}

type loader struct {
	repo  *Repo
	model string
}

// Load returns the stored records among ids, in id order. Missing ids are skipped.
func (l *loader) Load(ctx context.Context, ids []string) ([]record.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(l.model, id)
	}

	raw, err := l.repo.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	out := make([]record.Record, 0, len(raw))
	for i, data := range raw {
		if data == nil {
			continue
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal record %s/%s: %w", l.model, ids[i], err)
		}
		if doc.ID == "" {
			doc.ID = ids[i]
		}
		out = append(out, &doc)
	}
	return out, nil
}
