package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"coursegen/internal/model"
)

// ErrStaleList is returned by SetList when the listing was invalidated after
// the caller read its version.
var ErrStaleList = errors.New("course list changed since version was read")

// CourseListCache holds each user's {id, title} listing. Full records are
// never cached so enrichment progress is always read from the store.
//
// Every Invalidate bumps a per-user version. A fill is only stored when the
// version is unchanged since the caller read it before querying the store.
type CourseListCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewCourseListCache(client *redisv9.Client, ttl time.Duration) *CourseListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CourseListCache{client: client, ttl: ttl}
}

func (c *CourseListCache) GetList(ctx context.Context, userID uint) ([]model.CourseSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.listKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get course list failed: %w", err)
	}

	var list []model.CourseSummary
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached course list failed: %w", err)
	}
	return list, true, nil
}

// Version returns the user's listing version, zero if never invalidated.
func (c *CourseListCache) Version(ctx context.Context, userID uint) (int64, error) {
	version, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if err == redisv9.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get course list version failed: %w", err)
	}
	return version, nil
}

// SetList stores list if the user's version still equals version.
func (c *CourseListCache) SetList(ctx context.Context, userID uint, version int64, list []model.CourseSummary) error {
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal course list cache failed: %w", err)
	}

	versionKey := c.versionKey(userID)
	err = c.client.Watch(ctx, func(tx *redisv9.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && err != redisv9.Nil {
			return err
		}
		if current != version {
			return ErrStaleList
		}
		_, err = tx.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
			pipe.Set(ctx, c.listKey(userID), payload, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleList), errors.Is(err, redisv9.TxFailedErr):
		return ErrStaleList
	default:
		return fmt.Errorf("redis set course list failed: %w", err)
	}
}

func (c *CourseListCache) Invalidate(ctx context.Context, userID uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(userID))
		pipe.Del(ctx, c.listKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate course list failed: %w", err)
	}
	return nil
}

func (c *CourseListCache) listKey(userID uint) string {
	return fmt.Sprintf("course:list:%d", userID)
}

func (c *CourseListCache) versionKey(userID uint) string {
	return fmt.Sprintf("course:list:version:%d", userID)
}
