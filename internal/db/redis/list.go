package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/kickdex/internal/db"
)

// LPush prepends values to a list.
func (s *Store) LPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	cmd := s.b().Lpush().Key(key).Element(values...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	return nil
}

// RPopCount pops up to count values from the tail of a list (RPOP with count, Redis 6.2+).
func (s *Store) RPopCount(ctx context.Context, key string, count int) ([]string, error) {
	cmd := s.b().Rpop().Key(key).Count(int64(count)).Build()
	values, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		if isRedisErr(err, "wrong number of arguments") {
			return nil, &db.Error{Op: db.OpRPop, Err: fmt.Errorf("%w: %w", db.ErrUnsupportedCommand, err)}
		}
		return nil, &db.Error{Op: db.OpRPop, Err: err}
	}
	return values, nil
}

// RPop pops one value from the tail of a list.
func (s *Store) RPop(ctx context.Context, key string) (string, bool, error) {
	cmd := s.b().Rpop().Key(key).Build()
	value, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", false, nil
		}
		return "", false, &db.Error{Op: db.OpRPop, Err: err}
	}
	return value, true, nil
}

// LLen returns the length of a list, 0 when the key is missing.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Llen().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpLLen, Err: err}
	}
	return n, nil
}
