package ratelimit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

// CacheLimiter хранит состояние попыток в общем k/v (Redis) с TTL,
// поэтому блокировка действует на все инстансы сервиса и переживает
// рестарт. Счётчик и момент блокировки пишутся одной записью — атомарно
// относительно окна блокировки.
type CacheLimiter struct {
	kv          domain.Cache
	prefix      string
	maxAttempts int
	blockFor    time.Duration
	now         func() time.Time
}

var _ domain.LoginLimiter = (*CacheLimiter)(nil)

func NewCache(kv domain.Cache, maxAttempts int, blockFor time.Duration) *CacheLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if blockFor <= 0 {
		blockFor = 15 * time.Minute
	}
	return &CacheLimiter{
		kv:          kv,
		prefix:      "login_fail:",
		maxAttempts: maxAttempts,
		blockFor:    blockFor,
		now:         time.Now,
	}
}

func (c *CacheLimiter) key(k string) string { return c.prefix + k }

func (c *CacheLimiter) load(ctx context.Context, key string) (record, bool, error) {
	b, found, err := c.kv.Get(ctx, c.key(key))
	if err != nil || !found {
		return record{}, false, err
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		// битую запись считаем отсутствующей
		return record{}, false, nil
	}
	return rec, true, nil
}

func (c *CacheLimiter) store(ctx context.Context, key string, rec record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, c.key(key), b, int(c.blockFor.Seconds()))
}

func (c *CacheLimiter) Check(ctx context.Context, key string) (domain.LimitState, error) {
	rec, found, err := c.load(ctx, key)
	if err != nil || !found {
		return domain.LimitState{}, err
	}
	now := c.now()
	if rec.blocked(now) {
		return domain.LimitState{Blocked: true, Retry: rec.BlockedUntil.Sub(now)}, nil
	}
	if !rec.BlockedUntil.IsZero() {
		_ = c.kv.Del(ctx, c.key(key))
	}
	return domain.LimitState{}, nil
}

func (c *CacheLimiter) Fail(ctx context.Context, key string) (domain.LimitState, error) {
	rec, found, err := c.load(ctx, key)
	if err != nil {
		return domain.LimitState{}, err
	}
	if !found || (!rec.BlockedUntil.IsZero() && !rec.blocked(c.now())) {
		rec = record{}
	}
	rec.Count++
	state := domain.LimitState{}
	if rec.Count >= c.maxAttempts {
		rec.BlockedUntil = c.now().Add(c.blockFor)
		state = domain.LimitState{Blocked: true, Retry: c.blockFor}
	}
	if err := c.store(ctx, key, rec); err != nil {
		return state, err
	}
	return state, nil
}

func (c *CacheLimiter) Reset(ctx context.Context, key string) error {
	return c.kv.Del(ctx, c.key(key))
}
