package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/internal/repository"
)

const (
	runLockKey = "harvest:lock"
	lastRunKey = "harvest:last_run"
)

// releaseScript deletes the lock only while it still belongs to the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore holds the run lock and the last run summary.
type RedisStore struct {
	client *redis.Client
}

var _ repository.RunRepository = (*RedisStore)(nil)

func NewRedisStore(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb}
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) AcquireLock(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, runLockKey, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) ReleaseLock(ctx context.Context, owner string) error {
	if err := releaseScript.Run(ctx, s.client, []string{runLockKey}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveLastRun(ctx context.Context, summary domain.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, lastRunKey, data, 0).Err()
}

func (s *RedisStore) LastRun(ctx context.Context) (*domain.RunSummary, error) {
	data, err := s.client.Get(ctx, lastRunKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("load last run: %w", err)
	}
	var summary domain.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode last run: %w", err)
	}
	return &summary, nil
}
