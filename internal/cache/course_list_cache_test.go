package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"coursegen/internal/model"
)

func TestCourseListCacheWithRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set, skip redis integration test")
	}

	client := redisv9.NewClient(&redisv9.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}

	c := NewCourseListCache(client, time.Minute)
	const userID = 987654
	_ = c.Invalidate(ctx, userID)

	if _, hit, err := c.GetList(ctx, userID); err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}

	version, err := c.Version(ctx, userID)
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	list := []model.CourseSummary{{ID: "c1", Title: "Algebra I"}}
	if err := c.SetList(ctx, userID, version, list); err != nil {
		t.Fatalf("SetList returned error: %v", err)
	}
	got, hit, err := c.GetList(ctx, userID)
	if err != nil || !hit || len(got) != 1 || got[0].Title != "Algebra I" {
		t.Fatalf("unexpected cache read: %v hit=%v err=%v", got, hit, err)
	}

	if err := c.Invalidate(ctx, userID); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}
	if _, hit, _ := c.GetList(ctx, userID); hit {
		t.Fatal("expected miss after invalidate")
	}

	// A fill computed before the invalidation must not land.
	if err := c.SetList(ctx, userID, version, list); !errors.Is(err, ErrStaleList) {
		t.Fatalf("expected ErrStaleList, got %v", err)
	}
	if _, hit, _ := c.GetList(ctx, userID); hit {
		t.Fatal("stale fill was stored")
	}
}

func TestListKeyIsPerUser(t *testing.T) {
	c := NewCourseListCache(nil, 0)
	if c.ttl != 5*time.Minute {
		t.Fatalf("expected default ttl, got %v", c.ttl)
	}
	if c.listKey(1) == c.listKey(2) || c.versionKey(1) == c.versionKey(2) {
		t.Fatal("expected distinct keys per user")
	}
	if c.listKey(1) == c.versionKey(1) {
		t.Fatal("expected version key apart from list key")
	}
}
