// Package password — argon2id-хэширование паролей пользователей портала.
package password

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

// Профиль под наш трафик: хэш считается на логине, при создании
// пользователя админом и при смене пароля — всё редкие операции,
// 64 MiB и две итерации здесь не узкое место. Параметры закодированы
// в самой строке хэша, поэтому смена профиля не ломает старые записи.
var portalParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

type Hasher struct {
	params *argon2id.Params
}

func NewDefault() *Hasher {
	return &Hasher{params: portalParams}
}

func New(p *argon2id.Params) *Hasher { return &Hasher{params: p} }

// Hash — закодированная строка $argon2id$v=19$m=..., хранится в users.pass_hash.
func (h *Hasher) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errors.New("argon2id params not set")
	}
	return argon2id.CreateHash(plain, h.params)
}

// Verify принимает хэши с любыми параметрами, не только с portalParams:
// старые записи остаются проверяемыми после смены профиля.
func (h *Hasher) Verify(plain, encodedHash string) (bool, error) {
	if encodedHash == "" {
		return false, nil
	}
	return argon2id.ComparePasswordAndHash(plain, encodedHash)
}
