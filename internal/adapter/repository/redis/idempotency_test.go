package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	fx := newRedisFixture(t)
	store := fx.store
	ctx := context.Background()

	if err := fx.client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !exists || string(resp) != "cached" {
		t.Fatalf("expected existing cached response, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_CheckAndSetLocksNewKey(t *testing.T) {
	fx := newRedisFixture(t)
	store := fx.store
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || exists || resp != nil {
		t.Fatalf("unexpected result: exists=%v resp=%v err=%v", exists, resp, err)
	}

	val, err := fx.client.Get(ctx, "fundledger:idempotency:pending").Result()
	if err != nil || val != processingMarker {
		t.Fatalf("expected placeholder lock, got val=%s err=%v", val, err)
	}

	exists, resp, err = store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || !exists || string(resp) != processingMarker {
		t.Fatalf("expected second claim to see marker, got exists=%v resp=%s err=%v", exists, resp, err)
	}
}

func TestIdempotencyStore_Update(t *testing.T) {
	fx := newRedisFixture(t)
	store := fx.store
	ctx := context.Background()

	if err := store.Update(ctx, "complete", []byte("done"), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	val, err := fx.client.Get(ctx, store.prefix+"complete").Result()
	if err != nil || val != "done" {
		t.Fatalf("expected stored response, got val=%s err=%v", val, err)
	}
}

func TestIdempotencyStore_Release(t *testing.T) {
	fx := newRedisFixture(t)
	store := fx.store
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "failed", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if err := store.Release(ctx, "failed"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	exists, _, err := store.CheckAndSet(ctx, "failed", nil, time.Minute)
	if err != nil || exists {
		t.Fatalf("expected released key to be claimable, got exists=%v err=%v", exists, err)
	}
}

func TestIdempotencyStore_SharesNamespaceWithCache(t *testing.T) {
	fx := newRedisFixture(t)
	ctx := context.Background()

	if err := fx.cache.Set(ctx, "same-key", "quote", time.Minute); err != nil {
		t.Fatalf("cache set failed: %v", err)
	}

	exists, _, err := fx.store.CheckAndSet(ctx, "same-key", nil, time.Minute)
	if err != nil || exists {
		t.Fatalf("expected cache entry not to shadow idempotency key, got exists=%v err=%v", exists, err)
	}

	if keys := fx.server.Keys(); len(keys) != 2 {
		t.Fatalf("expected two namespaced keys, got %v", keys)
	}
}
