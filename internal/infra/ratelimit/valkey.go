package ratelimit

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyCounter shares windows across replicas. Each window is a key with a PEXPIRE set on first hit.
type ValkeyCounter struct {
	client valkey.Client
	prefix string
}

// NewValkeyCounter constructs the counter.
func NewValkeyCounter(client valkey.Client, prefix string) *ValkeyCounter {
	if prefix == "" {
		prefix = "cogniwell"
	}
	return &ValkeyCounter{client: client, prefix: prefix}
}

func (c *ValkeyCounter) Incr(ctx context.Context, key string, size time.Duration) (int64, time.Duration, error) {
	k := c.key(key)
	results := c.client.DoMulti(ctx,
		c.client.B().Incr().Key(k).Build(),
		c.client.B().Pexpire().Key(k).Milliseconds(size.Milliseconds()).Nx().Build(),
		c.client.B().Pttl().Key(k).Build(),
	)
	hits, err := results[0].AsInt64()
	if err != nil {
		return 0, 0, err
	}
	if err := results[1].Error(); err != nil {
		return 0, 0, err
	}
	ttl, err := results[2].AsInt64()
	if err != nil {
		return 0, 0, err
	}
	resetIn := time.Duration(ttl) * time.Millisecond
	if ttl < 0 {
		resetIn = size
	}
	return hits, resetIn, nil
}

func (c *ValkeyCounter) key(key string) string {
	return c.prefix + ":ratelimit:" + key
}

var _ Counter = (*ValkeyCounter)(nil)
