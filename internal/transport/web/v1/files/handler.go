// Package files — HTTP-ручки операций над хранилищем. Каждая ручка
// делает одно и то же: субъект из контекста → policy.Authorize →
// вызов шлюза → ответ. Собственной математики принадлежности префиксов
// здесь нет и быть не должно.
package files

import (
	"log"
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/policy"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type Handler struct {
	Log     *log.Logger
	Policy  *policy.Policy
	Storage domain.ObjectStore
}

// principal достаёт субъекта, положенного mw.RequireAuth.
func principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := domain.PrincipalFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return domain.Principal{}, false
	}
	return p, true
}
