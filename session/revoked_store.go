package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokedStore 登出后的 JWT 进 Redis 黑名单，TTL 到 token 过期为止。
// Redis 挂了宁可放行也不把所有请求打死，由调用方决定。
type RevokedStore struct {
	rdb *redis.Client
}

func NewRevokedStore(rdb *redis.Client) *RevokedStore {
	return &RevokedStore{rdb: rdb}
}

func key(jti string) string { return fmt.Sprintf("auth:revoked:%s", jti) }

func (s *RevokedStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // 已过期的 token 不用记
	}
	return s.rdb.Set(ctx, key(jti), "1", ttl).Err()
}

func (s *RevokedStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := s.rdb.Get(ctx, key(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
