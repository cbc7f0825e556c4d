package imports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const latestResultPrefix = "import:latest:"

// RedisResultStore keeps the most recent import result of each user.
type RedisResultStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisResultStore(client redis.Cmdable, ttl time.Duration) *RedisResultStore {
	return &RedisResultStore{client: client, ttl: ttl}
}

func (r *RedisResultStore) Save(ctx context.Context, userID string, result *ImportResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, latestResultPrefix+userID, data, r.ttl).Err()
}

// Latest returns nil, nil when the user has no stored result.
func (r *RedisResultStore) Latest(ctx context.Context, userID string) (*ImportResult, error) {
	data, err := r.client.Get(ctx, latestResultPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result ImportResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
