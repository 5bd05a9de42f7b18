package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix = "user:"
	PostKeyPrefix = "post:"
	PostsListKey  = "posts:list"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 30 * time.Minute
	ListTTL = time.Minute
)

func UserKey(userID string) string {
	return UserKeyPrefix + userID
}

func PostKey(postID string) string {
	return PostKeyPrefix + postID
}

// Cache is a JSON cache-aside layer over Redis. A nil *Cache, or one
// without a client, always falls through to the loader.
type Cache struct {
	rdb *redis.Client
}

// New wraps rdb. rdb may be nil.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Aside fills dest from key when cached; otherwise it runs load, which must
// populate dest, and stores the result for ttl. Loader errors are returned
// as-is and never cached. Redis failures degrade to a direct load.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if !c.enabled() {
		return load()
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		c.Invalidate(ctx, key)
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues("error").Inc()
	}

	if err := load(); err != nil {
		return err
	}

	encoded, err := json.Marshal(dest)
	if err != nil {
		log.Printf("cache: marshal %s: %v", key, err)
		return nil
	}
	if err := c.rdb.Set(ctx, key, encoded, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return nil
}

// Invalidate removes keys, ignoring errors.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	c.rdb.Del(ctx, keys...)
}

func (c *Cache) InvalidateUser(ctx context.Context, userID string) {
	c.Invalidate(ctx, UserKey(userID))
}

// InvalidatePost drops the post and the list that embeds it.
func (c *Cache) InvalidatePost(ctx context.Context, postID string) {
	c.Invalidate(ctx, PostKey(postID), PostsListKey)
}

func (c *Cache) InvalidatePostsList(ctx context.Context) {
	c.Invalidate(ctx, PostsListKey)
}

// InvalidateAuthorPosts drops the given posts and the list, which all embed
// a copy of their author.
func (c *Cache) InvalidateAuthorPosts(ctx context.Context, postIDs []string) {
	keys := make([]string, 0, len(postIDs)+1)
	for _, id := range postIDs {
		keys = append(keys, PostKey(id))
	}
	c.Invalidate(ctx, append(keys, PostsListKey)...)
}
