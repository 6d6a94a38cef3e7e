package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	data map[string]string
}

func (f *fakeStore) Ping(ctx context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	f.data[key] = value.(string)
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *goredis.StringCmd {
	if val, ok := f.data[key]; ok {
		return goredis.NewStringResult(val, nil)
	}
	return goredis.NewStringResult("", goredis.Nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func newFakeClient() *Client {
	return &Client{store: &fakeStore{data: map[string]string{}}}
}

func TestSetGetDel(t *testing.T) {
	client := newFakeClient()
	ctx := context.Background()

	key := client.CacheKey("dashboard", "stats")
	if key != "autoservice:cache:dashboard:stats" {
		t.Fatalf("unexpected key %q", key)
	}

	if _, err := client.Get(ctx, key); err != ErrCacheMiss {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := client.Set(ctx, key, `{"total":1}`, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != `{"total":1}` {
		t.Fatalf("unexpected value %q", val)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, key); err != ErrCacheMiss {
		t.Fatalf("expected cache miss after delete, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from nil client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
}
