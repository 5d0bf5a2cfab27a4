package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// FolloweeLoader reads the authoritative following list from the store.
type FolloweeLoader interface {
	FolloweeIDs(ctx context.Context, followerID string) ([]string, error)
}

// FollowingIndex caches each user's following id list in Redis. The cache is
// shared by every server process; the database stays the source of truth and
// Redis errors fall through to it.
type FollowingIndex struct {
	cache  *redis.Client
	loader FolloweeLoader
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewFollowingIndex(cache *redis.Client, loader FolloweeLoader, ttl time.Duration) *FollowingIndex {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FollowingIndex{cache: cache, loader: loader, ttl: ttl}
}

func followingKey(userID string) string {
	return fmt.Sprintf("following:ids:%s", userID)
}

func versionKey(userID string) string {
	return fmt.Sprintf("following:ver:%s", userID)
}

// setIfVersion 仅当版本号未变化时写入缓存，缺失的版本号按 0 处理
var setIfVersion = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if (v or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// version 读取当前版本号；读取失败时 ok 为 false，调用方不回填缓存
func (f *FollowingIndex) version(ctx context.Context, userID string) (string, bool) {
	v, err := f.cache.Get(ctx, versionKey(userID)).Result()
	switch {
	case err == redis.Nil:
		return "0", true
	case err != nil:
		return "", false
	}
	if _, err := strconv.ParseInt(v, 10, 64); err != nil {
		return "", false
	}
	return v, true
}

// FolloweeIDs returns the ids userID follows, loading and caching on a miss.
// The version is read before the load; a load that raced with Invalidate
// is returned to the caller but never written back.
func (f *FollowingIndex) FolloweeIDs(ctx context.Context, userID string) ([]string, error) {
	key := followingKey(userID)
	if data, err := f.cache.Get(ctx, key).Bytes(); err == nil {
		var ids []string
		if uErr := json.Unmarshal(data, &ids); uErr == nil {
			f.hits.Add(1)
			return ids, nil
		}
	} else if err != redis.Nil {
		logger.Warn("following cache read failed", zap.String("user", userID), zap.Error(err))
	}

	f.misses.Add(1)
	ver, cacheable := f.version(ctx, userID)
	ids, err := f.loader.FolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cacheable {
		return ids, nil
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return ids, nil
	}
	err = setIfVersion.Run(ctx, f.cache, []string{versionKey(userID), key},
		ver, payload, f.ttl.Milliseconds()).Err()
	if err != nil {
		logger.Warn("following cache write failed", zap.String("user", userID), zap.Error(err))
	}
	return ids, nil
}

// Invalidate bumps the version and drops the cached list after the follow
// graph of userID changed. The version outlives any in-flight load.
func (f *FollowingIndex) Invalidate(ctx context.Context, userID string) {
	_, err := f.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Expire(ctx, versionKey(userID), 2*f.ttl)
		pipe.Del(ctx, followingKey(userID))
		return nil
	})
	if err != nil {
		logger.Warn("following cache invalidate failed", zap.String("user", userID), zap.Error(err))
	}
}

// Counters reports cache hits and misses since start.
func (f *FollowingIndex) Counters() (hits, misses int64) {
	return f.hits.Load(), f.misses.Load()
}
