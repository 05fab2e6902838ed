package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultClientName is reported by CLIENT LIST for fund ledger connections.
const DefaultClientName = "fundledger"

// Options tunes the client built from a redis:// URL. Zero values keep the
// URL settings.
type Options struct {
	URL          string
	ClientName   string
	PoolSize     int
	MinIdleConns int
}

func (o Options) parse() (*redis.Options, error) {
	opts, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if o.PoolSize > 0 {
		opts.PoolSize = o.PoolSize
	}
	if o.MinIdleConns > 0 {
		opts.MinIdleConns = o.MinIdleConns
		if opts.PoolSize > 0 {
			opts.MinIdleConns = min(opts.MinIdleConns, opts.PoolSize)
		}
	}

	opts.ClientName = o.ClientName
	if opts.ClientName == "" {
		opts.ClientName = DefaultClientName
	}

	return opts, nil
}

// Dial builds a client and verifies it with PING.
func Dial(ctx context.Context, o Options) (*redis.Client, error) {
	opts, err := o.parse()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
