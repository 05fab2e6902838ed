package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

const testNamespace = "fundledger"

// redisFixture is a miniredis server with the cache and idempotency store
// both bound to testNamespace. Everything is closed on test cleanup.
type redisFixture struct {
	server *miniredis.Miniredis
	client *redislib.Client
	cache  *Cache
	store  *IdempotencyStore
}

func newRedisFixture(t *testing.T) *redisFixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &redisFixture{
		server: server,
		client: client,
		cache:  NewCache(client, testNamespace),
		store:  NewIdempotencyStore(client, testNamespace),
	}
}
