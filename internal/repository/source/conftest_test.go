package source

import (
	"context"

	"github.com/kailas-cloud/kickdex/internal/db"
)

// mockStore is an in-memory JSON document store.
type mockStore struct {
	docs     map[string][]byte
	err      error
	setPaths []string
}

func newMockStore() *mockStore {
	return &mockStore{docs: map[string][]byte{}}
}

func (m *mockStore) JSONSet(_ context.Context, key, path string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.setPaths = append(m.setPaths, path)
	m.docs[key] = data
	return nil
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return d, nil
}

func (m *mockStore) JSONGetMulti(_ context.Context, keys []string) ([][]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.docs[k]
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.docs, key)
	return nil
}
