package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/keebstore/pkg/cart"
	"github.com/example/keebstore/pkg/config"
	"github.com/go-redis/redis/v8"
)

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// CartStore persists carts in redis, one key per shopper. It satisfies the
// cart.Store port: read on load, write on every mutation.
type CartStore struct {
	redis *RedisRepository
	ttl   time.Duration
}

func (r *RedisRepository) CartStore() *CartStore {
	return &CartStore{redis: r, ttl: r.config.CartTTL}
}

func cartKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}

// Load returns the stored cart for the key, or a fresh empty cart when none
// exists yet.
func (s *CartStore) Load(ctx context.Context, key string) (*cart.Cart, error) {
	var c cart.Cart
	err := s.redis.GetJSON(ctx, cartKey(key), &c)
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &c, nil
}

func (s *CartStore) Save(ctx context.Context, key string, c *cart.Cart) error {
	if err := s.redis.SetJSON(ctx, cartKey(key), c, s.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context, key string) error {
	return s.redis.client.Del(ctx, cartKey(key)).Err()
}
