package users

import (
	"encoding/json"
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

// Все поля опциональны; nil — не трогать. Пароль обновляется тем же
// запросом, но хэшируется до похода в БД.
type updateRequest struct {
	Username *string          `json:"username"`
	Password *string          `json:"password"`
	Role     *domain.Role     `json:"type"`
	Prefix   *string          `json:"prefix"`
	Metadata *domain.Metadata `json:"metadata"`
}

// Update godoc
// @Summary     Update user
// @Description Частичное обновление. Инвариант роль/префикс проверяется
// @Description по итоговому состоянию записи, не по дельте.
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       id path int true "user id"
// @Param       request body updateRequest true "fields"
// @Success     200 {object} userView
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Failure     404 {object} object
// @Failure     409 {object} object
// @Router      /api/v1/users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "users.update"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Username != nil && !domain.ValidUsername(*req.Username) {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Password != nil && len(*req.Password) < minPasswordLen {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	cur, err := h.Users.ActiveByID(r.Context(), id)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	// итоговое состояние после применения дельты
	role := cur.Role
	if req.Role != nil {
		role = *req.Role
	}
	prefix := cur.Prefix
	if req.Prefix != nil {
		prefix = *req.Prefix
	}
	if !checkRolePrefix(role, prefix) {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	upd := domain.UserUpdate{
		Username: req.Username,
		Role:     req.Role,
		Metadata: req.Metadata,
	}
	if req.Prefix != nil {
		norm := domain.NormalizePrefix(*req.Prefix)
		upd.Prefix = &norm
	}
	if req.Password != nil {
		hash, err := h.Hasher.Hash(*req.Password)
		if err != nil {
			logx.Error(h.Log, reqID, op, "hash failed", err)
			v1.WriteDomainError(w, r, domain.ErrUnexpected)
			return
		}
		upd.PassHash = &hash
	}

	u, err := h.Users.Update(r.Context(), id, upd)
	if err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "id", u.ID, "username", u.Username)
	v1.WriteOK(w, r, viewOf(u))
}
