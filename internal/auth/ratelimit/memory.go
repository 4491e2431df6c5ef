// Package ratelimit — троттлинг неудачных логинов за абстракцией
// domain.LoginLimiter. Memory — дефолт для одного инстанса;
// CacheLimiter держит состояние в общем Redis и переживает рестарты
// и горизонтальное масштабирование.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

type record struct {
	Count        int       `json:"count"`
	BlockedUntil time.Time `json:"blockedUntil,omitzero"`
}

func (r record) blocked(now time.Time) bool {
	return !r.BlockedUntil.IsZero() && now.Before(r.BlockedUntil)
}

// Memory — процессная реализация: карта ключ → состояние попыток.
type Memory struct {
	mu          sync.Mutex
	byKey       map[string]*record
	maxAttempts int
	blockFor    time.Duration
	now         func() time.Time // подменяется в тестах
}

var _ domain.LoginLimiter = (*Memory)(nil)

func NewMemory(maxAttempts int, blockFor time.Duration) *Memory {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if blockFor <= 0 {
		blockFor = 15 * time.Minute
	}
	return &Memory{
		byKey:       make(map[string]*record),
		maxAttempts: maxAttempts,
		blockFor:    blockFor,
		now:         time.Now,
	}
}

func (m *Memory) Check(_ context.Context, key string) (domain.LimitState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byKey[key]
	if !ok {
		return domain.LimitState{}, nil
	}
	now := m.now()
	if rec.blocked(now) {
		return domain.LimitState{Blocked: true, Retry: rec.BlockedUntil.Sub(now)}, nil
	}
	// блок истёк — счётчик начинается заново
	if !rec.BlockedUntil.IsZero() {
		delete(m.byKey, key)
	}
	return domain.LimitState{}, nil
}

func (m *Memory) Fail(_ context.Context, key string) (domain.LimitState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byKey[key]
	if !ok || (!rec.BlockedUntil.IsZero() && !rec.blocked(m.now())) {
		rec = &record{}
		m.byKey[key] = rec
	}
	rec.Count++
	if rec.Count >= m.maxAttempts {
		rec.BlockedUntil = m.now().Add(m.blockFor)
		return domain.LimitState{Blocked: true, Retry: m.blockFor}, nil
	}
	return domain.LimitState{}, nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byKey, key)
	return nil
}
