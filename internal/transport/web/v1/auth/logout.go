package auth

import (
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type logoutResponse struct {
	Success bool `json:"success"`
}

// Logout godoc
// @Summary     Logout
// @Description Сносит сессионную cookie. Токен при этом остаётся валидным
// @Description до истечения TTL — серверного реестра сессий нет.
// @Tags        auth
// @Produce     json
// @Success     200 {object} logoutResponse
// @Router      /api/v1/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w)
	logx.Info(h.Log, mw.RequestIDFromCtx(r.Context()), "auth.logout", "ok")
	v1.WriteOK(w, r, logoutResponse{Success: true})
}
