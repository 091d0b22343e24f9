package menus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-cafe-orders/internal/redisx"
)

var ErrCacheMiss = errors.New("menu cache miss")

// Cache holds the whole catalog. Writes carry the generation read before the
// catalog was loaded; Invalidate bumps it so slower fills cannot land.
type Cache interface {
	Get(ctx context.Context) ([]MenuItem, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, gen int64, items []MenuItem) (bool, error)
	Invalidate(ctx context.Context) error
}

// KEYS[1] catalog, KEYS[2] generation; ARGV[1] expected generation,
// ARGV[2] payload, ARGV[3] ttl ms.
var setScript = redis.NewScript(`
local g = redis.call('GET', KEYS[2]) or '0'
if g ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisCache stores the whole catalog as one JSON value.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) ([]MenuItem, error) {
	data, err := c.client.Get(ctx, redisx.KeyMenus).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get menus: %w", err)
	}
	var items []MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal menus: %w", err)
	}
	return items, nil
}

func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, redisx.KeyMenusGen).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get menus generation: %w", err)
	}
	return gen, nil
}

// Set stores items only while the generation is still gen. It reports
// whether the write happened.
func (c *RedisCache) Set(ctx context.Context, gen int64, items []MenuItem) (bool, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("marshal menus: %w", err)
	}
	ttl := c.ttl.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	n, err := setScript.Run(ctx, c.client,
		[]string{redisx.KeyMenus, redisx.KeyMenusGen},
		strconv.FormatInt(gen, 10), b, ttl,
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set menus: %w", err)
	}
	return n == 1, nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, redisx.KeyMenusGen)
		pipe.Del(ctx, redisx.KeyMenus)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate menus: %w", err)
	}
	return nil
}
