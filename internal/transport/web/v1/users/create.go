package users

import (
	"encoding/json"
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

const minPasswordLen = 8

type createRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     domain.Role     `json:"type"`
	Prefix   string          `json:"prefix"`
	Metadata domain.Metadata `json:"metadata"`
}

// Create godoc
// @Summary     Create user
// @Description client/team обязаны иметь префикс, admin — не иметь.
// @Description Занятое имя среди активных пользователей — 409.
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       request body createRequest true "user"
// @Success     200 {object} userView
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Failure     409 {object} object
// @Router      /api/v1/users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "users.create"
	reqID := mw.RequestIDFromCtx(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if !domain.ValidUsername(req.Username) || len(req.Password) < minPasswordLen {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if !checkRolePrefix(req.Role, req.Prefix) {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	u, err := h.Users.Create(r.Context(), domain.User{
		Username: req.Username,
		PassHash: hash,
		Role:     req.Role,
		Prefix:   domain.NormalizePrefix(req.Prefix),
		Metadata: req.Metadata,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err, "username", req.Username)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "id", u.ID, "username", u.Username, "role", u.Role)
	v1.WriteOK(w, r, viewOf(u))
}
