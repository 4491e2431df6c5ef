package users

import (
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type listResponse struct {
	Users []userView `json:"users"`
}

// List godoc
// @Summary     List active users
// @Tags        users
// @Produce     json
// @Success     200 {object} listResponse
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Router      /api/v1/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "users.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	us, err := h.Users.ListActive(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOK(w, r, listResponse{Users: viewsOf(us)})
}

// ListDeleted godoc
// @Summary     List soft-deleted users
// @Description Удалённые записи храним для восстановления и аудита.
// @Tags        users
// @Produce     json
// @Success     200 {object} listResponse
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Router      /api/v1/users/deleted [get]
func (h *Handler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	const op = "users.list_deleted"
	reqID := mw.RequestIDFromCtx(r.Context())

	us, err := h.Users.ListDeleted(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOK(w, r, listResponse{Users: viewsOf(us)})
}

// Get godoc
// @Summary     Get user by id
// @Description Отдаёт и активные, и soft-deleted записи.
// @Tags        users
// @Produce     json
// @Param       id path int true "user id"
// @Success     200 {object} userView
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Failure     404 {object} object
// @Router      /api/v1/users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "users.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.Users.ByID(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "get failed", err, "id", id)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOK(w, r, viewOf(u))
}
