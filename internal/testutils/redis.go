// Package testutils provides shared helpers for repository and
// orchestrator tests.
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	redisclient "github.com/contentcraft/canon-api/internal/redis"
)

// CreateTestRedisClient spins up an in-process miniredis and returns a
// client connected to it. Both are torn down with the test.
func CreateTestRedisClient(t *testing.T) (redisclient.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, mr
}
