// Package auth — HTTP-ручки сессий: вход, выход, текущий пользователь,
// смена пароля. Сессия — JWT в httpOnly cookie.
package auth

import (
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
)

type Handler struct {
	Log     *log.Logger
	Users   domain.UsersRepo
	Tokens  domain.TokenManager
	Hasher  domain.PasswordHasher
	Limiter domain.LoginLimiter

	// Secure у cookie; выключен только вне production (localhost без TLS)
	SecureCookie bool
	TokenTTL     time.Duration
}

// setSession кладёт токен в cookie. SameSite=Strict: API живёт на том же
// origin, что и фронтенд, межсайтовых запросов с сессией быть не должно.
func (h *Handler) setSession(w http.ResponseWriter, token domain.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.AuthCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// clientKey — ключ троттлинга логина: адрес источника. За обратным
// прокси берём первый адрес из X-Forwarded-For.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
