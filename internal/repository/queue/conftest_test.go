package queue

import (
	"context"

	"github.com/kailas-cloud/kickdex/internal/db"
)

// fakeList is an in-memory list store. LPush prepends, RPop takes from the tail.
type fakeList struct {
	lists          map[string][]string
	countRejected  bool
	rpopCountCalls int
	rpopCalls      int
	err            error
}

func newFakeList() *fakeList {
	return &fakeList{lists: map[string][]string{}}
}

func (f *fakeList) LPush(_ context.Context, key string, values ...string) error {
	if f.err != nil {
		return f.err
	}
	for _, v := range values {
		f.lists[key] = append([]string{v}, f.lists[key]...)
	}
	return nil
}

func (f *fakeList) RPopCount(ctx context.Context, key string, count int) ([]string, error) {
	f.rpopCountCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.countRejected {
		return nil, &db.Error{Op: db.OpRPop, Err: db.ErrUnsupportedCommand}
	}
	var out []string
	for len(out) < count {
		v, ok := f.pop(key)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeList) RPop(_ context.Context, key string) (string, bool, error) {
	f.rpopCalls++
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.pop(key)
	return v, ok, nil
}

func (f *fakeList) pop(key string) (string, bool) {
	l := f.lists[key]
	if len(l) == 0 {
		return "", false
	}
	v := l[len(l)-1]
	f.lists[key] = l[:len(l)-1]
	return v, true
}

func (f *fakeList) LLen(_ context.Context, key string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.lists[key])), nil
}

func (f *fakeList) Del(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.lists, key)
	return nil
}
