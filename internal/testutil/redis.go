package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewRedis starts an in-process redis server and returns a client bound to
// it. Both are closed when the test ends.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		// nolint:errcheck
		client.Close()
	})
	return server, client
}
