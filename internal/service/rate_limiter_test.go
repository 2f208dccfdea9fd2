package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryRateLimiter(t *testing.T) {
	l := NewMemoryRateLimiter(time.Minute, 2).(*memoryRateLimiter)
	current := time.Now()
	l.now = func() time.Time { return current }

	if !l.Allow("User-1") || !l.Allow(" user-1 ") {
		t.Fatalf("expected first two requests to pass")
	}
	if l.Allow("user-1") {
		t.Fatalf("expected third request in window to be denied")
	}
	if !l.Allow("user-2") {
		t.Fatalf("expected other keys to be independent")
	}
	if l.Allow("  ") {
		t.Fatalf("expected empty key to be rejected")
	}

	current = current.Add(61 * time.Second)
	if !l.Allow("user-1") {
		t.Fatalf("expected window to slide")
	}
}

func TestMemoryRateLimiterEvictsExpiredKeys(t *testing.T) {
	l := NewMemoryRateLimiter(time.Minute, 1).(*memoryRateLimiter)
	current := time.Now()
	l.now = func() time.Time { return current }

	for i := 0; i < 50; i++ {
		l.Allow(fmt.Sprintf("client-%d", i))
	}
	if len(l.hits) != 50 {
		t.Fatalf("expected 50 tracked keys, got %d", len(l.hits))
	}

	current = current.Add(2 * time.Minute)
	if !l.Allow("client-new") {
		t.Fatalf("expected new key to pass")
	}
	if len(l.hits) != 1 {
		t.Fatalf("expected expired keys to be evicted, got %d", len(l.hits))
	}
}

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestRedisRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisRateLimiter
		if !l.Allow("user-1") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := &redisRateLimiter{client: mock, window: 2 * time.Hour, max: 3, prefix: "analyze:rl:"}
		if !l.Allow(" User-1 ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "analyze:rl:user-1" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 7200 {
			t.Fatalf("expected TTL seconds=7200, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := &redisRateLimiter{client: &mockRedisEvaler{result: 4}, window: time.Minute, max: 3, prefix: "analyze:rl:"}
		if l.Allow("user-1") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisRateLimiter{client: &mockRedisEvaler{err: errors.New("redis down")}, window: time.Minute, max: 3, prefix: "analyze:rl:"}
		if !l.Allow("user-1") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}
