package redis

import (
	"context"
	"testing"
	"time"

	"go-wishlist-app/internal/core/domain/auth"

	"github.com/stretchr/testify/assert"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisAdapter_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	redisContainer, err := tcredis.Run(ctx,
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("failed to start redis: %v", err)
	}
	defer func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis: %v", err)
		}
	}()

	endpoint, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// The redis-container module returns a URL like redis://localhost:port
	// but redis.NewClient expects just the host:port.
	// We need to strip the prefix if it exists.
	addr := endpoint
	if len(addr) > 8 && addr[:8] == "redis://" {
		addr = addr[8:]
	}

	client := NewClient(addr)
	defer client.Close()
	adapter := NewCatalogCache(client, time.Hour)
	sessions := NewSessionStore(client)

	t.Run("Set and Get ids from set", func(t *testing.T) {
		id := "outfit-1"
		err := adapter.AddToSet(ctx, id, 1.0)
		assert.NoError(t, err)

		ids, err := adapter.GetIdsFromSet(ctx, 0, -1)
		assert.NoError(t, err)
		assert.Contains(t, ids, id)
	})

	t.Run("Set and GetBatch", func(t *testing.T) {
		id := "outfit-2"
		data := []byte(`{"id":"outfit-2","name":"Redis Test"}`)

		err := adapter.Set(ctx, id, data)
		assert.NoError(t, err)

		batch, err := adapter.GetBatch(ctx, []string{id, "non-existent"})
		assert.NoError(t, err)
		assert.Equal(t, data, batch[id])
		assert.NotContains(t, batch, "non-existent")
	})

	t.Run("Remove", func(t *testing.T) {
		id := "outfit-3"
		err := adapter.AddToSet(ctx, id, 3.0)
		assert.NoError(t, err)
		err = adapter.Set(ctx, id, []byte("data"))
		assert.NoError(t, err)

		err = adapter.Remove(ctx, id)
		assert.NoError(t, err)

		ids, _ := adapter.GetIdsFromSet(ctx, 0, -1)
		assert.NotContains(t, ids, id)

		batch, _ := adapter.GetBatch(ctx, []string{id})
		assert.Empty(t, batch)
	})

	t.Run("Reset", func(t *testing.T) {
		assert.NoError(t, adapter.AddToSet(ctx, "outfit-4", 4.0))
		assert.NoError(t, adapter.Reset(ctx))

		ids, err := adapter.GetIdsFromSet(ctx, 0, -1)
		assert.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Sessions", func(t *testing.T) {
		err := sessions.Create(ctx, auth.Session{ID: "sid", UserID: "user"}, time.Minute)
		assert.NoError(t, err)

		got, err := sessions.Lookup(ctx, "sid")
		assert.NoError(t, err)
		assert.Equal(t, "user", got.UserID)

		assert.NoError(t, sessions.Delete(ctx, "sid"))
		_, err = sessions.Lookup(ctx, "sid")
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})
}
