package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestDial(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := Dial(ctx, Options{URL: "redis://" + s.Addr()})
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Set(ctx, "fundledger:ping", "1", 0).Err(); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !s.Exists("fundledger:ping") {
		t.Fatalf("expected key written through the dialed client")
	}
	if client.Options().ClientName != DefaultClientName {
		t.Fatalf("expected client name %q, got %q", DefaultClientName, client.Options().ClientName)
	}
}

func TestDialInvalidURL(t *testing.T) {
	if _, err := Dial(context.Background(), Options{URL: "://bad-url"}); err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestDialServerDown(t *testing.T) {
	s := miniredis.RunT(t)
	url := "redis://" + s.Addr()
	s.Close()

	if _, err := Dial(context.Background(), Options{URL: url}); err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}

func TestOptionsParse(t *testing.T) {
	opts, err := Options{URL: "redis://localhost:6379/2", ClientName: "fundledger-cli", PoolSize: 3, MinIdleConns: 8}.parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if opts.PoolSize != 3 {
		t.Fatalf("expected pool size 3, got %d", opts.PoolSize)
	}
	if opts.MinIdleConns != 3 {
		t.Fatalf("expected idle conns capped at pool size, got %d", opts.MinIdleConns)
	}
	if opts.DB != 2 {
		t.Fatalf("expected db 2 from URL, got %d", opts.DB)
	}
	if opts.ClientName != "fundledger-cli" {
		t.Fatalf("expected client name override, got %q", opts.ClientName)
	}
}
