package app

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathBio-Lab/s3-output-manager/internal/auth/password"
	"github.com/MathBio-Lab/s3-output-manager/internal/config"
	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

type seedRepo struct {
	active    []domain.User
	created   *domain.User
	createErr error
}

func (f *seedRepo) Close()                     {}
func (f *seedRepo) Ping(context.Context) error { return nil }

func (f *seedRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	u.ID = 1
	f.created = &u
	return u, nil
}

func (f *seedRepo) ActiveByID(_ context.Context, _ int64) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

func (f *seedRepo) ActiveByUsername(_ context.Context, _ string) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

func (f *seedRepo) ByID(_ context.Context, _ int64) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

func (f *seedRepo) ListActive(context.Context) ([]domain.User, error)  { return f.active, nil }
func (f *seedRepo) ListDeleted(context.Context) ([]domain.User, error) { return nil, nil }

func (f *seedRepo) Update(_ context.Context, _ int64, _ domain.UserUpdate) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}
func (f *seedRepo) UpdatePassword(context.Context, int64, string) error { return nil }
func (f *seedRepo) SoftDelete(context.Context, int64) error             { return nil }
func (f *seedRepo) Restore(_ context.Context, _ int64) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

func seedCfg() *config.Config {
	return &config.Config{SeedAdminUsername: "admin", SeedAdminPassword: "admin"}
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

// Засеянный админ обязан уметь войти: хэш проверяется против пароля
// из конфигурации тем же хэшером, которым пользуется логин.
func TestEnsureSeedAdminCredentialVerifies(t *testing.T) {
	repo := &seedRepo{}
	hasher := password.NewDefault()

	require.NoError(t, ensureSeedAdmin(context.Background(), discard(), repo, hasher, seedCfg()))
	require.NotNil(t, repo.created)
	assert.Equal(t, "admin", repo.created.Username)
	assert.Equal(t, domain.RoleAdmin, repo.created.Role)
	assert.Empty(t, repo.created.Prefix)

	ok, err := hasher.Verify("admin", repo.created.PassHash)
	require.NoError(t, err)
	assert.True(t, ok, "seeded hash must verify against the configured password")
}

func TestEnsureSeedAdminSkipsWhenAdminAlive(t *testing.T) {
	repo := &seedRepo{active: []domain.User{
		{ID: 3, Username: "boss", Role: domain.RoleAdmin},
	}}

	require.NoError(t, ensureSeedAdmin(context.Background(), discard(), repo, password.NewDefault(), seedCfg()))
	assert.Nil(t, repo.created)
}

func TestEnsureSeedAdminRunsWhenOnlyClientsExist(t *testing.T) {
	repo := &seedRepo{active: []domain.User{
		{ID: 5, Username: "karen", Role: domain.RoleClient, Prefix: "karen/"},
	}}

	require.NoError(t, ensureSeedAdmin(context.Background(), discard(), repo, password.NewDefault(), seedCfg()))
	require.NotNil(t, repo.created)
	assert.Equal(t, domain.RoleAdmin, repo.created.Role)
}

func TestEnsureSeedAdminToleratesConcurrentSeed(t *testing.T) {
	// второй инстанс напоролся на уникальный индекс username — не ошибка
	repo := &seedRepo{createErr: domain.ErrConflict}

	assert.NoError(t, ensureSeedAdmin(context.Background(), discard(), repo, password.NewDefault(), seedCfg()))
}
