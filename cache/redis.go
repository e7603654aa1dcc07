package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openbill/openbill/models"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration // Default TTL for cache entries
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func CreateRedisCache(config RedisConfig) (*RedisCache, error) {
	addr := config.Host + ":" + strconv.Itoa(config.Port)
	if config.Port == 0 {
		addr = config.Host + ":6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	ttl := config.TTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Invoice list caching. Keys are scoped per view so a mutation can drop all
// three views for the affected user in one call.

func InvoiceListKey(scope, username string) string {
	return "invoices:" + scope + ":" + username
}

func (c *RedisCache) GetInvoiceList(ctx context.Context, scope, username string) ([]models.InvoiceWithType, bool) {
	raw, err := c.client.Get(ctx, InvoiceListKey(scope, username)).Result()
	if err != nil {
		return nil, false
	}
	var invoices []models.InvoiceWithType
	if err := json.Unmarshal([]byte(raw), &invoices); err != nil {
		return nil, false
	}
	return invoices, true
}

func (c *RedisCache) SetInvoiceList(ctx context.Context, scope, username string, invoices []models.InvoiceWithType) error {
	data, err := json.Marshal(invoices)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, InvoiceListKey(scope, username), data, c.ttl).Err()
}

// InvalidateInvoiceLists drops every cached view for the user.
func (c *RedisCache) InvalidateInvoiceLists(ctx context.Context, username string) error {
	return c.client.Del(ctx,
		InvoiceListKey("user", username),
		InvoiceListKey("business", username),
		InvoiceListKey("customer", username),
	).Err()
}
