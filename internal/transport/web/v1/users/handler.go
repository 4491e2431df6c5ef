// Package users — админская поверхность управления пользователями.
// Все ручки висят за mw.RequireAdmin; проверок роли внутри нет.
package users

import (
	"log"
	"net/http"
	"strconv"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type Handler struct {
	Log    *log.Logger
	Users  domain.UsersRepo
	Hasher domain.PasswordHasher
}

// userView — запись пользователя наружу, без хэша пароля.
type userView struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Role      domain.Role     `json:"type"`
	Prefix    string          `json:"prefix"`
	Metadata  domain.Metadata `json:"metadata,omitempty"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
	DeletedAt string          `json:"deletedAt,omitempty"`
}

func viewOf(u domain.User) userView {
	v := userView{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Prefix:    u.Prefix,
		Metadata:  u.Metadata,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: u.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if u.DeletedAt != nil {
		v.DeletedAt = u.DeletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}

func viewsOf(us []domain.User) []userView {
	out := make([]userView, 0, len(us))
	for _, u := range us {
		out = append(out, viewOf(u))
	}
	return out
}

// pathID достаёт {id} из шаблона маршрута.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return 0, false
	}
	return id, true
}

// checkRolePrefix — инвариант роль/префикс: client и team живут в своём
// префиксе, админ ходит по всему бакету и префикса не имеет.
func checkRolePrefix(role domain.Role, prefix string) bool {
	if !role.Valid() {
		return false
	}
	if role == domain.RoleAdmin {
		return prefix == ""
	}
	return prefix != ""
}
