package domain

import "context"

// Простой k/v интерфейс с TTL. Реализация — Redis.
type Cache interface {
	// Get: (nil, false, nil) — промах, не ошибка.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close()
}
