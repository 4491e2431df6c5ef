package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

var _ domain.UsersRepo = (*PGRepo)(nil)

var userColumns = []string{
	"id", "username", "pass_hash", "role", "prefix",
	"metadata", "created_at", "updated_at", "deleted_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u    domain.User
		role string
		meta []byte
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PassHash, &role, &u.Prefix,
		&meta, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &u.Metadata); err != nil {
			return domain.User{}, err
		}
	}
	if u.Metadata == nil {
		u.Metadata = domain.Metadata{}
	}
	return u, nil
}

func mapPGError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return domain.ErrConflict
	}
	return err
}

func (r *PGRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	meta, err := json.Marshal(orEmpty(u.Metadata))
	if err != nil {
		return domain.User{}, err
	}

	q := r.qb().Insert(r.table()).
		Columns("username", "pass_hash", "role", "prefix", "metadata").
		Values(u.Username, u.PassHash, string(u.Role), u.Prefix, meta).
		Suffix("RETURNING " + joinColumns())

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Create", sqlStr, args)

	start := time.Now()
	created, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("Create scan error after %s: %v", time.Since(start), err)
		return domain.User{}, mapPGError(err)
	}
	r.logger.Printf("Create ok in %s id=%d username=%s", time.Since(start), created.ID, created.Username)
	return created, nil
}

// ActiveByID — только живые записи: soft-deleted для аутентификации
// неотличимы от отсутствующих.
func (r *PGRepo) ActiveByID(ctx context.Context, id int64) (domain.User, error) {
	return r.one(ctx, "ActiveByID", sq.And{sq.Eq{"id": id}, sq.Eq{"deleted_at": nil}})
}

func (r *PGRepo) ActiveByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.one(ctx, "ActiveByUsername", sq.And{sq.Eq{"username": username}, sq.Eq{"deleted_at": nil}})
}

// ByID видит и удалённые записи (админский просмотр/restore).
func (r *PGRepo) ByID(ctx context.Context, id int64) (domain.User, error) {
	return r.one(ctx, "ByID", sq.Eq{"id": id})
}

func (r *PGRepo) one(ctx context.Context, op string, where sq.Sqlizer) (domain.User, error) {
	q := r.qb().Select(userColumns...).From(r.table()).Where(where)

	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	u, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("%s scan error after %s: %v", op, time.Since(start), err)
		return domain.User{}, mapPGError(err)
	}
	return u, nil
}

func (r *PGRepo) ListActive(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, "ListActive", sq.Eq{"deleted_at": nil}, "created_at DESC")
}

func (r *PGRepo) ListDeleted(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, "ListDeleted", sq.NotEq{"deleted_at": nil}, "deleted_at DESC")
}

func (r *PGRepo) list(ctx context.Context, op string, where sq.Sqlizer, order string) ([]domain.User, error) {
	q := r.qb().Select(userColumns...).From(r.table()).Where(where).OrderBy(order)

	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapPGError(err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, id int64, upd domain.UserUpdate) (domain.User, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.PassHash != nil {
		set["pass_hash"] = *upd.PassHash
	}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.Prefix != nil {
		set["prefix"] = *upd.Prefix
	}
	if upd.Metadata != nil {
		meta, err := json.Marshal(orEmpty(*upd.Metadata))
		if err != nil {
			return domain.User{}, err
		}
		set["metadata"] = meta
	}

	q := r.qb().Update(r.table()).SetMap(set).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"deleted_at": nil}}).
		Suffix("RETURNING " + joinColumns())

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Update", sqlStr, args)

	u, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.User{}, mapPGError(err)
	}
	return u, nil
}

func (r *PGRepo) UpdatePassword(ctx context.Context, id int64, passHash string) error {
	q := r.qb().Update(r.table()).
		Set("pass_hash", passHash).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"deleted_at": nil}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdatePassword", sqlStr, args)

	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return mapPGError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete помечает пользователя удалённым. Инвариант «в системе всегда
// есть живой админ» проверяется в той же транзакции: живые админские
// строки лочатся FOR UPDATE, поэтому два параллельных удаления последних
// двух админов не проскочат оба.
func (r *PGRepo) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var role string
	var deletedAt *time.Time
	err = tx.QueryRow(ctx,
		"SELECT role, deleted_at FROM "+r.table()+" WHERE id = $1 FOR UPDATE", id,
	).Scan(&role, &deletedAt)
	if err != nil {
		return mapPGError(err)
	}
	if deletedAt != nil {
		return domain.ErrBadParams // уже удалён
	}

	if role == string(domain.RoleAdmin) {
		rows, err := tx.Query(ctx,
			"SELECT id FROM "+r.table()+" WHERE role = 'admin' AND deleted_at IS NULL FOR UPDATE")
		if err != nil {
			return err
		}
		admins := 0
		for rows.Next() {
			admins++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if admins <= 1 {
			return domain.ErrForbidden
		}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE "+r.table()+" SET deleted_at = now(), updated_at = now() WHERE id = $1", id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) Restore(ctx context.Context, id int64) (domain.User, error) {
	q := r.qb().Update(r.table()).
		Set("deleted_at", nil).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.And{sq.Eq{"id": id}, sq.NotEq{"deleted_at": nil}}).
		Suffix("RETURNING " + joinColumns())

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Restore", sqlStr, args)

	u, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.User{}, mapPGError(err)
	}
	return u, nil
}

func joinColumns() string {
	s := userColumns[0]
	for _, c := range userColumns[1:] {
		s += ", " + c
	}
	return s
}

func orEmpty(m domain.Metadata) domain.Metadata {
	if m == nil {
		return domain.Metadata{}
	}
	return m
}
