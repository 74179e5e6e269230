package cacheinfra

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/goliatone/go-metadata-cache/cache"
)

// classify maps a raw client error onto the cache error taxonomy.
func classify(adapter, op string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return &cache.TimeoutError{Adapter: adapter, Op: op, Timeout: timeout, Err: err}
	}
	return &cache.ConnectionError{Adapter: adapter, Op: op, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var connectTimeout *memcache.ConnectTimeoutError
	return errors.As(err, &connectTimeout)
}
