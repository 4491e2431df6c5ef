package users

import (
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type deleteResponse struct {
	Success bool `json:"success"`
}

// Delete godoc
// @Summary     Soft-delete user
// @Description Запись помечается удалённой, объекты в бакете не трогаем.
// @Description Последнего активного админа удалить нельзя — 403.
// @Tags        users
// @Produce     json
// @Param       id path int true "user id"
// @Success     200 {object} deleteResponse
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Failure     404 {object} object
// @Router      /api/v1/users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "users.delete"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// самоудаление запрещаем: сессия умерла бы посреди работы админа
	if p, ok := domain.PrincipalFromCtx(r.Context()); ok && p.ID == id {
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	if err := h.Users.SoftDelete(r.Context(), id); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "id", id)
	v1.WriteOK(w, r, deleteResponse{Success: true})
}

// Restore godoc
// @Summary     Restore soft-deleted user
// @Description Возврат возможен, пока имя не занято активной записью —
// @Description иначе 409.
// @Tags        users
// @Produce     json
// @Param       id path int true "user id"
// @Success     200 {object} userView
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Failure     404 {object} object
// @Failure     409 {object} object
// @Router      /api/v1/users/{id}/restore [post]
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	const op = "users.restore"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.Users.Restore(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "restore failed", err, "id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "id", u.ID, "username", u.Username)
	v1.WriteOK(w, r, viewOf(u))
}
