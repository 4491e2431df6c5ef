package domain

import "context"

// Поля для частичного обновления пользователя (nil — не трогать).
type UserUpdate struct {
	Username *string
	PassHash *string
	Role     *Role
	Prefix   *string
	Metadata *Metadata
}

type UsersRepo interface {
	Close()
	Ping(ctx context.Context) error

	Create(ctx context.Context, u User) (User, error)
	// ActiveByID возвращает ErrNotFound и для отсутствующих,
	// и для soft-deleted записей — аутентификация их не различает.
	ActiveByID(ctx context.Context, id int64) (User, error)
	ActiveByUsername(ctx context.Context, username string) (User, error)
	ByID(ctx context.Context, id int64) (User, error)

	ListActive(ctx context.Context) ([]User, error)
	ListDeleted(ctx context.Context) ([]User, error)

	Update(ctx context.Context, id int64, upd UserUpdate) (User, error)
	UpdatePassword(ctx context.Context, id int64, passHash string) error

	// SoftDelete проверяет инвариант «последний админ» в той же
	// транзакции, что и удаление; нарушение — ErrForbidden.
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (User, error)
}
