package domain

import (
	"context"
	"time"
)

type Token = string

// Клеймы сессионного токена. Роль и префикс кладём в токен для
// отладки/UI, но резолвер всё равно перечитывает запись из БД —
// токен доверенным источником префикса не является.
type TokenClaims struct {
	JTI       string
	UserID    int64
	Username  string
	Role      Role
	Prefix    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenManager interface {
	Issue(ctx context.Context, u User) (Token, TokenClaims, error)
	Parse(ctx context.Context, t Token) (TokenClaims, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

// LoginLimiter — троттлинг неудачных логинов по ключу (адрес источника).
// Retry сообщает остаток блокировки, когда Blocked=true.
type LimitState struct {
	Blocked bool
	Retry   time.Duration
}

type LoginLimiter interface {
	// Check — вызывается до проверки пароля.
	Check(ctx context.Context, key string) (LimitState, error)
	// Fail — регистрирует неудачную попытку; может перевести ключ в блок.
	Fail(ctx context.Context, key string) (LimitState, error)
	// Reset — сброс счётчика после успешного входа или истечения блока.
	Reset(ctx context.Context, key string) error
}
