package auth

import (
	"encoding/json"
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

const minPasswordLen = 8

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type changePasswordResponse struct {
	Success bool `json:"success"`
}

// ChangePassword godoc
// @Summary     Change own password
// @Description Требует текущий пароль даже при живой сессии: украденная
// @Description cookie не должна давать смену пароля.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body changePasswordRequest true "currentPassword, newPassword"
// @Success     200 {object} changePasswordResponse
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Router      /api/v1/auth/change-password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	const op = "auth.change_password"
	reqID := mw.RequestIDFromCtx(r.Context())

	p, ok := domain.PrincipalFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.CurrentPassword == "" || len(req.NewPassword) < minPasswordLen {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	u, err := h.Users.ActiveByID(r.Context(), p.ID)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	ok, err = h.Hasher.Verify(req.CurrentPassword, u.PassHash)
	if err != nil {
		logx.Error(h.Log, reqID, op, "verify failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if !ok {
		logx.Info(h.Log, reqID, op, "wrong current password", "user", u.Username)
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	hash, err := h.Hasher.Hash(req.NewPassword)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if err := h.Users.UpdatePassword(r.Context(), u.ID, hash); err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "user", u.Username)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user", u.Username)
	v1.WriteOK(w, r, changePasswordResponse{Success: true})
}
