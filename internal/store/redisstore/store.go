package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// IncrWindow bumps the fixed-window counter for identity and returns
// the count after the bump. The key expires at the window boundary so
// counters reset without cleanup jobs.
func (s *Store) IncrWindow(ctx context.Context, identity string, window time.Duration) (int64, error) {
	bucket := time.Now().UnixNano() / int64(window)
	key := fmt.Sprintf("rl:chat:%s:%d", identity, bucket)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
