package provenance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each domain's history in a Redis list.
type RedisStore struct {
	Client *redis.Client
}

// NewRedisStore connects to addr ("host:port" or a redis:// URL).
func NewRedisStore(addr string) *RedisStore {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}
	return &RedisStore{Client: redis.NewClient(opts)}
}

func key(domain string) string {
	return "vitibrasil:sources:" + domain
}

func (s *RedisStore) Append(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("provenance: marshal event: %w", err)
	}

	k := key(e.Domain)
	pipe := s.Client.TxPipeline()
	pipe.RPush(ctx, k, b)
	pipe.LTrim(ctx, k, -historyLimit, -1)
	pipe.Expire(ctx, k, eventTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("provenance: append %s: %w", k, err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, domain string) ([]Event, error) {
	vals, err := s.Client.LRange(ctx, key(domain), 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		return []Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("provenance: read %s: %w", domain, err)
	}

	events := make([]Event, 0, len(vals))
	for _, v := range vals {
		var e Event
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue // entrada corrompida não derruba a listagem
		}
		events = append(events, e)
	}
	return events, nil
}

// Ping checks the connection; used at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
