package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per record at <prefix>:<sr_id>. NULL columns are
// stored as absent hash fields.
type RedisStore struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedisStore connects to addr and verifies the server answers PING.
func NewRedisStore(ctx context.Context, addr string, db int, prefix string) (*RedisStore, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ensureContext(ctx)).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	store := NewRedisStoreFromClient(client, prefix)
	store.owned = true
	return store, nil
}

// NewRedisStoreFromClient wraps an existing client. Close leaves the client
// open; its owner is responsible for it.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: strings.TrimSuffix(prefix, ":")}
}

// Name implements Fetcher.
func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) key(id string) string {
	if s.prefix == "" {
		return id
	}
	return s.prefix + ":" + id
}

// FetchPair implements Fetcher with a single pipelined round trip.
func (s *RedisStore) FetchPair(ctx context.Context, queryID, matchID string) ([]Record, error) {
	ctx = ensureContext(ctx)
	ids := []string{queryID}
	if matchID != queryID {
		ids = append(ids, matchID)
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	recs := make([]Record, 0, len(ids))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("fetch record %s: %w", ids[i], err)
		}
		if len(fields) == 0 {
			continue
		}
		rec := Record{ID: ids[i]}
		for _, column := range Columns {
			if value, ok := fields[column]; ok {
				_ = rec.SetField(column, Text(value))
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Put implements Writer. Each record replaces its hash atomically.
func (s *RedisStore) Put(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	pipe := s.client.TxPipeline()
	for _, rec := range recs {
		if rec.ID == "" {
			return errors.New("record without sr_id")
		}
		key := s.key(rec.ID)
		values := map[string]any{ColumnID: rec.ID}
		for _, column := range Columns {
			if value, _ := rec.Field(column); value.Valid {
				values[column] = value.String
			}
		}
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store records: %w", err)
	}
	return nil
}

// Close releases the client when the store created it.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil || !s.owned {
		return nil
	}
	return s.client.Close()
}
