// Package redistore keeps the cost-basis book in Redis so several machines
// can share one book. Records are JSON values under a fixed key prefix.
package redistore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/mcintyre94/swapsies/internal/basis"
)

const keyPrefix = "swapsies:basis:"

type Store struct {
	rdb *redis.Client
}

// New wraps an already-configured client. The caller owns connectivity
// checks (Ping) at wiring time.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func recordKey(mint string) string { return keyPrefix + mint }

func (s *Store) Get(ctx context.Context, mint string) (*basis.Record, error) {
	data, err := s.rdb.Get(ctx, recordKey(mint)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", basis.ErrNotFound, mint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cost basis for %s: %w", mint, err)
	}

	var rec basis.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cost basis for %s: %w", mint, err)
	}
	return &rec, nil
}

func (s *Store) Put(ctx context.Context, rec *basis.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record for %s: %w", rec.Mint, err)
	}
	return s.rdb.Set(ctx, recordKey(rec.Mint), data, 0).Err()
}

func (s *Store) Delete(ctx context.Context, mint string) error {
	deleted, err := s.rdb.Del(ctx, recordKey(mint)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete cost basis for %s: %w", mint, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", basis.ErrNotFound, mint)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*basis.Record, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cost basis keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cost basis records: %w", err)
	}

	out := make([]*basis.Record, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// Key expired between Scan and MGet.
			continue
		}
		var rec basis.Record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Mint < out[j].Mint })
	return out, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
