// Package cache keeps orders and the public catalog in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Emma781227/Ble-dor/internal/models"
)

const (
	orderKeyPrefix = "order:"
	catalogKey     = "catalog:available"
)

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

// Dial connects and pings.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func OrderKey(id string) string {
	return orderKeyPrefix + id
}

func (c *RedisCache) GetOrder(ctx context.Context, id string) (*models.Order, bool, error) {
	var order models.Order
	ok, err := c.getJSON(ctx, OrderKey(id), &order)
	if !ok || err != nil {
		return nil, false, err
	}
	return &order, true, nil
}

func (c *RedisCache) SetOrder(ctx context.Context, order *models.Order) error {
	return c.setJSON(ctx, OrderKey(order.ID), order)
}

func (c *RedisCache) InvalidateOrder(ctx context.Context, id string) error {
	return c.Client.Del(ctx, OrderKey(id)).Err()
}

func (c *RedisCache) GetCatalog(ctx context.Context) ([]models.Product, bool, error) {
	var products []models.Product
	ok, err := c.getJSON(ctx, catalogKey, &products)
	if !ok || err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (c *RedisCache) SetCatalog(ctx context.Context, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	return c.setJSON(ctx, catalogKey, products)
}

func (c *RedisCache) InvalidateCatalog(ctx context.Context) error {
	return c.Client.Del(ctx, catalogKey).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// drop the corrupt entry so the next read repopulates it
		_ = c.Client.Del(ctx, key).Err()
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, data, c.TTL).Err()
}
