package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SCANの1回あたりの件数とDELの1回あたりのキー数
const scanCount = 100

// 商品一覧のJSONをRedisに置く
type RedisProductCache struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

func NewRedisProductCache(client *redis.Client, prefix string) *RedisProductCache {
	return &RedisProductCache{client: client, prefix: prefix}
}

func (c *RedisProductCache) GetProductList(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		//壊れた値は捨ててミス扱い
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *RedisProductCache) SetProductList(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// prefixを含むキーを先に全部集めてから消す。
// SCANの途中で消すとサーバーによってはキーを取りこぼす
func (c *RedisProductCache) InvalidateProductLists(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, "*"+c.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	for start := 0; start < len(keys); start += scanCount {
		end := start + scanCount
		if end > len(keys) {
			end = len(keys)
		}
		if err := c.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}
