package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/kiln/internal/cache/redis"
	"github.com/davidbz/kiln/internal/domain"
)

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestResultStore_Key(t *testing.T) {
	store := redis.NewResultStore(unreachableClient(t), "")
	require.Equal(t, "kiln:result:abc", store.Key("abc"))

	custom := redis.NewResultStore(unreachableClient(t), "test:")
	require.Equal(t, "test:abc", custom.Key("abc"))
}

func TestResultStore_ConnectionErrorIsNotAMiss(t *testing.T) {
	store := redis.NewResultStore(unreachableClient(t), "")
	ctx := context.Background()

	_, err := store.Get(ctx, "abc")
	require.Error(t, err)
	require.False(t, errors.Is(err, domain.ErrCacheMiss))
	require.Contains(t, err.Error(), "failed to read result")

	err = store.Set(ctx, "abc", []byte(`{}`), time.Minute)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to store result")
}
