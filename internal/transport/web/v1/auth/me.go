package auth

import (
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

// Me godoc
// @Summary     Current user
// @Description Субъект текущего запроса. Роль и префикс свежие — резолвер
// @Description перечитывает запись из БД на каждый запрос.
// @Tags        auth
// @Produce     json
// @Success     200 {object} userView
// @Failure     401 {object} object
// @Router      /api/v1/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := domain.PrincipalFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	v1.WriteOK(w, r, userView{
		ID:       p.ID,
		Username: p.Username,
		Role:     p.Role,
		Prefix:   p.HomePrefix,
	})
}
