package app

import (
	"context"
	"errors"
	"log"

	"github.com/MathBio-Lab/s3-output-manager/internal/config"
	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

// ensureSeedAdmin создаёт стартового админа, когда живых админов нет:
// пустая система иначе неуправляема — создавать пользователей некому.
// Пароль берётся из окружения и хэшируется тем же хэшером, что и при
// обычной смене пароля; готовый хэш в SQL-миграцию не вшиваем.
func ensureSeedAdmin(ctx context.Context, logger *log.Logger, users domain.UsersRepo, hasher domain.PasswordHasher, cfg *config.Config) error {
	existing, err := users.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, u := range existing {
		if u.Role == domain.RoleAdmin {
			return nil
		}
	}

	hash, err := hasher.Hash(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	created, err := users.Create(ctx, domain.User{
		Username: cfg.SeedAdminUsername,
		PassHash: hash,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrConflict) {
		// параллельный инстанс успел первым
		return nil
	}
	if err != nil {
		return err
	}

	logger.Printf("seeded admin %q (id=%d), rotate the default password", created.Username, created.ID)
	return nil
}
