package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/kheina-com/tagsvc/internal/db/rdb"
	"github.com/kheina-com/tagsvc/internal/domain/entities"
)

// TagCache is the durable key/value cache for tag records and their
// derived views, with four key spaces: tag:{name}, post:{post_id},
// user:{user_id}, freq:{user_id}.
type TagCache interface {
	GetTag(ctx context.Context, name string) (*entities.InternalTag, bool, error)
	SetTag(ctx context.Context, tag *entities.InternalTag) error
	RemoveTag(ctx context.Context, name string) error

	GetPostTags(ctx context.Context, postID entities.PostID) (entities.TagGroups, bool, error)
	SetPostTags(ctx context.Context, postID entities.PostID, groups entities.TagGroups) error
	RemovePostTags(ctx context.Context, postID entities.PostID) error

	GetUserTags(ctx context.Context, userID string) ([]*entities.InternalTag, bool, error)
	SetUserTags(ctx context.Context, userID string, tags []*entities.InternalTag) error

	GetFrequent(ctx context.Context, userID string) (entities.TagGroups, bool, error)
	SetFrequent(ctx context.Context, userID string, groups entities.TagGroups) error
}

// RedisTagCache implements TagCache over go-redis with sonic for JSON
// encoding, namespacing keys through rdb.AddPrefix.
type RedisTagCache struct {
	client  redis.Cmdable
	tagTTL  time.Duration
	postTTL time.Duration
	userTTL time.Duration
	freqTTL time.Duration
}

func NewRedisTagCache(client redis.Cmdable, tagTTL, postTTL, userTTL, freqTTL time.Duration) *RedisTagCache {
	return &RedisTagCache{client: client, tagTTL: tagTTL, postTTL: postTTL, userTTL: userTTL, freqTTL: freqTTL}
}

func tagKey(name string) string    { return rdb.AddPrefix("tag:" + name) }
func postKey(postID string) string { return rdb.AddPrefix("post:" + postID) }
func userKey(userID string) string { return rdb.AddPrefix("user:" + userID) }
func freqKey(userID string) string { return rdb.AddPrefix("freq:" + userID) }

func get[T any](ctx context.Context, client redis.Cmdable, key string) (T, bool, error) {
	var zero T
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("tag cache get %s: %w", key, err)
	}
	var out T
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return zero, false, fmt.Errorf("tag cache decode %s: %w", key, err)
	}
	return out, true, nil
}

func set(ctx context.Context, client redis.Cmdable, key string, value interface{}, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("tag cache encode %s: %w", key, err)
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("tag cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisTagCache) GetTag(ctx context.Context, name string) (*entities.InternalTag, bool, error) {
	return get[*entities.InternalTag](ctx, c.client, tagKey(name))
}

func (c *RedisTagCache) SetTag(ctx context.Context, tag *entities.InternalTag) error {
	return set(ctx, c.client, tagKey(tag.Name), tag, c.tagTTL)
}

func (c *RedisTagCache) RemoveTag(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, tagKey(name)).Err(); err != nil {
		return fmt.Errorf("tag cache remove %s: %w", name, err)
	}
	return nil
}

func (c *RedisTagCache) GetPostTags(ctx context.Context, postID entities.PostID) (entities.TagGroups, bool, error) {
	return get[entities.TagGroups](ctx, c.client, postKey(postID.String()))
}

func (c *RedisTagCache) SetPostTags(ctx context.Context, postID entities.PostID, groups entities.TagGroups) error {
	return set(ctx, c.client, postKey(postID.String()), groups, c.postTTL)
}

func (c *RedisTagCache) RemovePostTags(ctx context.Context, postID entities.PostID) error {
	if err := c.client.Del(ctx, postKey(postID.String())).Err(); err != nil {
		return fmt.Errorf("tag cache remove post %s: %w", postID.String(), err)
	}
	return nil
}

func (c *RedisTagCache) GetUserTags(ctx context.Context, userID string) ([]*entities.InternalTag, bool, error) {
	return get[[]*entities.InternalTag](ctx, c.client, userKey(userID))
}

func (c *RedisTagCache) SetUserTags(ctx context.Context, userID string, tags []*entities.InternalTag) error {
	return set(ctx, c.client, userKey(userID), tags, c.userTTL)
}

func (c *RedisTagCache) GetFrequent(ctx context.Context, userID string) (entities.TagGroups, bool, error) {
	return get[entities.TagGroups](ctx, c.client, freqKey(userID))
}

func (c *RedisTagCache) SetFrequent(ctx context.Context, userID string, groups entities.TagGroups) error {
	return set(ctx, c.client, freqKey(userID), groups, c.freqTTL)
}
