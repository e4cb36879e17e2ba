package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpellegrini/habitus/internal/core/domain"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestRedisClient_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	pass := getEnv("REDIS_PASSWORD", "secret_redis_pass_local")

	rdb, err := NewRedisClient(host, port, pass, 1)

	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()

	require.NoError(t, rdb.FlushDB(ctx).Err(), "Failed to flush test DB")

	t.Run("Connection Ping", func(t *testing.T) {
		pong, err := rdb.Ping(ctx).Result()
		assert.NoError(t, err)
		assert.Equal(t, "PONG", pong)
	})

	t.Run("Goal list round trip", func(t *testing.T) {
		goal, err := domain.NewRecurringGoal(
			"user-cache", "Meditate", "", "#00AA00", "", domain.RecurrenceDaily,
			nil, 1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil,
		)
		require.NoError(t, err)

		payload, err := json.Marshal([]*domain.Goal{goal})
		require.NoError(t, err)

		key := "goals:user-cache"
		require.NoError(t, rdb.Set(ctx, key, payload, 30*time.Minute).Err())

		raw, err := rdb.Get(ctx, key).Bytes()
		require.NoError(t, err)

		var decoded []*domain.Goal
		require.NoError(t, json.Unmarshal(raw, &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, goal.ID, decoded[0].ID)
		assert.Equal(t, "Meditate", decoded[0].Title)

		rdb.Del(ctx, key)
	})

	t.Run("Expire Check", func(t *testing.T) {
		key := "streak_recalc_lock"
		err := rdb.Set(ctx, key, "expire_me", 1*time.Second).Err()
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond)

		_, err = rdb.Get(ctx, key).Result()

		assert.Error(t, err)
		assert.ErrorIs(t, err, redis.Nil, "Errors need to be of type 'redis.Nil'")
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		concurrency := 20
		done := make(chan bool)

		for i := 0; i < concurrency; i++ {
			go func(id int) {
				key := fmt.Sprintf("goals:concurrent-user-%d", id)
				err := rdb.Set(ctx, key, "val", 10*time.Second).Err()
				assert.NoError(t, err)

				_, err = rdb.Get(ctx, key).Result()
				assert.NoError(t, err)

				done <- true
			}(i)
		}

		for i := 0; i < concurrency; i++ {
			<-done
		}
	})
}
