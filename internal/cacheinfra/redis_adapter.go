package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-metadata-cache/cache"
	"github.com/redis/go-redis/v9"
)

// AdapterRedis is the factory name of the redis adapter.
const AdapterRedis = "redis"

const redisScanCount = 500

// redisAdapter stores entries in redis. Every call runs under its own
// deadline derived from Options.Timeout.
type redisAdapter struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

var _ cache.Adapter = (*redisAdapter)(nil)

// NewRedisAdapter wraps an existing client. The caller owns the client
// configuration; Close closes it.
func NewRedisAdapter(client *redis.Client, opts cache.Options) *redisAdapter {
	return &redisAdapter{
		client:  client,
		prefix:  opts.Prefix,
		timeout: opts.CallTimeout(),
	}
}

// newRedisAdapter dials the first configured server and verifies the
// connection with PING before handing the adapter out.
func newRedisAdapter(ctx context.Context, opts cache.Options) (cache.Adapter, error) {
	if len(opts.Servers) == 0 {
		return nil, &cache.ConfigError{Field: "servers", Message: "a redis server is required"}
	}

	timeout := opts.CallTimeout()
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Servers[0].Address(),
		Password:     opts.Password,
		DB:           opts.Index,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	adapter := NewRedisAdapter(client, opts)
	if err := adapter.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return adapter, nil
}

// Ping checks the connection.
func (r *redisAdapter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return classify(AdapterRedis, "ping", r.timeout, r.client.Ping(ctx).Err())
}

// Get implements cache.Adapter.Get.
func (r *redisAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify(AdapterRedis, "get", r.timeout, err)
	}
	return value, true, nil
}

// Set implements cache.Adapter.Set.
func (r *redisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	return classify(AdapterRedis, "set", r.timeout, r.client.Set(ctx, key, value, ttl).Err())
}

// Delete implements cache.Adapter.Delete.
func (r *redisAdapter) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return classify(AdapterRedis, "delete", r.timeout, r.client.Del(ctx, key).Err())
}

// Clear deletes every key under the adapter prefix. The scan as a whole is
// bounded by the call timeout.
func (r *redisAdapter) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	iter := r.client.Scan(ctx, 0, escapeRedisPattern(r.prefix)+"*", redisScanCount).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= redisScanCount {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return classify(AdapterRedis, "clear", r.timeout, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return classify(AdapterRedis, "clear", r.timeout, err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return classify(AdapterRedis, "clear", r.timeout, err)
		}
	}
	return nil
}

// Close implements cache.Adapter.Close.
func (r *redisAdapter) Close() error {
	return r.client.Close()
}

// escapeRedisPattern escapes glob metacharacters so the prefix matches literally.
func escapeRedisPattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
