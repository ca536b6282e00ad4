package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockCmdable struct {
	counters    map[string]int64
	expireCalls []string
	delCalls    []string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{counters: map[string]int64{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.counters[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(m.counters[key])
	return cmd
}

func (m *mockCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, key)
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.delCalls = append(m.delCalls, keys...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "quote:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first request allowed with count 1, got allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "quote:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "quote:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestRateLimitKeyNamespacing(t *testing.T) {
	client := &Client{}
	if got := client.RateLimitKey("quote:ip"); got != "qd:rate_limit:quote:ip" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
}
