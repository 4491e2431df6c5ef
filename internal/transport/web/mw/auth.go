package mw

import (
	"net/http"
	"strings"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

// AuthCookie — имя cookie с сессионным JWT.
const AuthCookie = "auth_token"

type AuthDeps struct {
	Tokens domain.TokenManager
	Users  domain.UsersRepo
}

// RequireAuth резолвит субъекта запроса. Любой дефект токена (нет,
// просрочен, битая подпись) неотличим от его отсутствия — всегда один
// и тот же 401. После парсинга запись пользователя перечитывается из БД:
// смена роли/префикса и soft-delete действуют немедленно, без пере-логина.
func RequireAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			writeUnauthorized(w)
			return
		}
		claims, err := deps.Tokens.Parse(r.Context(), raw)
		if err != nil {
			writeUnauthorized(w)
			return
		}
		u, err := deps.Users.ActiveByID(r.Context(), claims.UserID)
		if err != nil {
			// не найден или soft-deleted — неаутентифицирован
			writeUnauthorized(w)
			return
		}
		ctx := domain.WithPrincipal(r.Context(), domain.PrincipalFromUser(u))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin — поверх RequireAuth: админская поверхность управления
// пользователями.
func RequireAdmin(deps AuthDeps, next http.Handler) http.Handler {
	return RequireAuth(deps, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := domain.PrincipalFromCtx(r.Context())
		if !ok || p.Role != domain.RoleAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// extractToken: cookie в приоритете (так ходит фронтенд),
// Authorization: Bearer — запасной путь для API-клиентов.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(AuthCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
