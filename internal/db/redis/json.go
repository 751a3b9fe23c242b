package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/insighthire/internal/db"
)

// JSONSet stores a JSON document at the given key and path.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args(path, string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONGet retrieves a JSON document by key and optional paths.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	args := make([]string, len(paths))
	copy(args, paths)

	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}

// JSONMGet fetches the same path from many keys in one round-trip.
func (s *Store) JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmd := s.b().Arbitrary("JSON.MGET").Keys(keys...).Args(path).Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONMGet, Err: err}
	}
	if len(msgs) != len(keys) {
		return nil, &db.Error{
			Op:  db.OpJSONMGet,
			Err: fmt.Errorf("got %d replies for %d keys", len(msgs), len(keys)),
		}
	}

	out := make([][]byte, len(msgs))
	for i, m := range msgs {
		raw, err := m.ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, &db.Error{Op: db.OpJSONMGet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		out[i] = []byte(raw)
	}
	return out, nil
}

// arrAddUniqueScript returns -1 for a missing key, 0 when the value is already
// in the array and 1 after appending it.
const arrAddUniqueScript = `
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
local idx = redis.call('JSON.ARRINDEX', KEYS[1], ARGV[1], ARGV[2])
if type(idx) == 'table' then idx = idx[1] end
if idx and idx >= 0 then return 0 end
redis.call('JSON.ARRAPPEND', KEYS[1], ARGV[1], ARGV[2])
return 1
`

// JSONArrAddUnique appends a JSON-encoded value to the array at path unless an
// equal element is already present. The check and append run as one script.
func (s *Store) JSONArrAddUnique(ctx context.Context, key, path string, value []byte) (bool, error) {
	cmd := s.b().Eval().Script(arrAddUniqueScript).Numkeys(1).Key(key).Arg(path, string(value)).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpJSONArrAdd, Err: err}
	}
	if n < 0 {
		return false, db.ErrKeyNotFound
	}
	return n == 1, nil
}
