// Package cache хранит в redis уже подтверждённые токены, чтобы повторные переходы по ссылке не ходили в базу.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/newsletter/internal/config"
)

const confirmedPrefix = "confirmed_token:"

// Cache обёртка над клиентом redis.
type Cache struct {
	Db  *redis.Client
	ttl time.Duration
}

// InitServer подключается к redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, ttl: cfg.ConfirmedTTL}, nil
}

// Get читает JSON-значение по ключу. Возвращает false, если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в JSON.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = c.Db.Set(ctx, key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConfirmedSubscriber возвращает id подписчика, если токен уже подтверждался.
func (c *Cache) ConfirmedSubscriber(ctx context.Context, token string) (string, bool, error) {
	var id string
	found, err := c.Get(ctx, confirmedKey(token), &id)
	if err != nil || !found {
		return "", false, err
	}
	return id, true, nil
}

// MarkConfirmed запоминает подтверждённый токен на время ttl.
func (c *Cache) MarkConfirmed(ctx context.Context, token, subscriberID string) error {
	return c.Set(ctx, confirmedKey(token), subscriberID, c.ttl)
}

// Close закрывает соединение.
func (c *Cache) Close() error {
	return c.Db.Close()
}

// сам токен в redis не попадает
func confirmedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return confirmedPrefix + hex.EncodeToString(sum[:])
}

// Nop заменяет кеш, когда redis не настроен.
type Nop struct{}

// ConfirmedSubscriber всегда промахивается.
func (Nop) ConfirmedSubscriber(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// MarkConfirmed ничего не делает.
func (Nop) MarkConfirmed(context.Context, string, string) error {
	return nil
}
