package cache

import (
	"context"
	"fmt"
	"time"
)

// WindowStore is a fixed-window request counter shared across instances
// through Redis. It satisfies echo's middleware.RateLimiterStore.
type WindowStore struct {
	cache  *Client
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

// NewWindowStore allows max hits per identifier in each window.
func NewWindowStore(c *Client, prefix string, max int, window time.Duration) *WindowStore {
	return &WindowStore{
		cache:  c,
		prefix: prefix,
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

// Allow records a hit for identifier. When Redis is unreachable requests are allowed.
func (s *WindowStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	bucket := s.now().UnixNano() / int64(s.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", s.prefix, identifier, bucket)

	n, err := s.cache.IncrWindow(ctx, key, s.window)
	if err != nil {
		return true, nil
	}
	return n <= s.max, nil
}
