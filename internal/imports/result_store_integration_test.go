//go:build integration

package imports

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TestRedisResultStore_Integration
// Run with: go test -v -tags=integration ./internal/imports/... -run TestRedisResultStore_Integration
//
// Required environment variables:
//   - REDIS_URL
func TestRedisResultStore_Integration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisResultStore(client, time.Minute)
	userID := uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), latestResultPrefix+userID) })

	if got, err := store.Latest(ctx, userID); err != nil || got != nil {
		t.Fatalf("empty store: got %+v, %v", got, err)
	}

	n := 3
	want := &ImportResult{Created: 2, Updated: 1, Errors: []string{"行3: 商品名が空です"}, ImageCount: &n, ImagesAssociated: 2}
	if err := store.Save(ctx, userID, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Latest(ctx, userID)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.Created != 2 || got.Updated != 1 || len(got.Errors) != 1 || got.ImageCount == nil || *got.ImageCount != 3 {
		t.Errorf("unexpected result: %+v", got)
	}

	ttl, err := client.TTL(ctx, latestResultPrefix+userID).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, %v", ttl, err)
	}
}
