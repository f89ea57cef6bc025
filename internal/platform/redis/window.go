package redis

import (
	stdctx "context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindow counts hits per key in fixed windows using INCR and EXPIRE NX.
type FixedWindow struct {
	client redis.Cmdable
}

// NewFixedWindow creates a new [FixedWindow].
func NewFixedWindow(client redis.Cmdable) *FixedWindow {
	return &FixedWindow{client: client}
}

// Hit increments key and returns the new count with the time left in the window.
//
// The expiry is only set by the first hit, so the window does not slide.
func (w *FixedWindow) Hit(context stdctx.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)

	_, err := w.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(context, key)
		pipe.ExpireNX(context, key, window)
		ttl = pipe.PTTL(context, key)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("redis: window hit %q: %w", key, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}

	return incr.Val(), remaining, nil
}
