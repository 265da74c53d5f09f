package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares day counts across processes and survives restarts, so
// several workers drawing on the same API key see one budget. A TTL keeps
// the keyspace from growing one key per day forever; expired days read
// as 0, which is correct since the upstream allowance has reset by then.
type Redis struct {
	rdb redis.UniversalClient
	ns  string        // logical namespace to avoid collisions
	ttl time.Duration // optional TTL for day keys; 0 disables expiry
}

var _ Counter = (*Redis)(nil)

// NewRedis creates a Redis-backed counter without TTL.
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: client, ns: namespace}
}

// NewRedisWithTTL creates a Redis-backed counter whose day keys expire
// after ttl. If ttl <= 0, keys do not expire.
func NewRedisWithTTL(client redis.UniversalClient, namespace string, ttl time.Duration) *Redis {
	return &Redis{rdb: client, ns: namespace, ttl: ttl}
}

func (c *Redis) key(day string) string { return "quota:" + c.ns + ":" + day }

func (c *Redis) Used(ctx context.Context, day string) (uint64, error) {
	res, err := c.rdb.Get(ctx, c.key(day)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis quota parse: %w", err)
	}
	return u, nil
}

// Record atomically increments the day's count and (optionally) refreshes
// the TTL. When ttl > 0, INCR + EXPIRE are pipelined in a single
// round-trip and the INCR result is captured from the pipeline.
func (c *Redis) Record(ctx context.Context, day string) (uint64, error) {
	k := c.key(day)

	if c.ttl <= 0 {
		v, err := c.rdb.Incr(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	}

	var incr *redis.IntCmd
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, c.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// Cleanup is not applicable here (Redis handles expiry if TTL is set).
func (c *Redis) Cleanup(time.Duration) {}

// Close closes the underlying Redis client.
func (c *Redis) Close(context.Context) error { return c.rdb.Close() }
