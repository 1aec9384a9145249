package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	infraredis "github.com/iho/backoffice/internal/infrastructure/redis"
)

// startRedis connects the production client constructor to an in-process
// server. The server is returned for TTL and key inspection.
func startRedis(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client, err := infraredis.NewClient(context.Background(), infraredis.Config{
		URL:      "redis://" + srv.Addr(),
		PoolSize: 2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, srv
}
