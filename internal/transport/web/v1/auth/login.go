package auth

import (
	"encoding/json"
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool     `json:"success"`
	User    userView `json:"user"`
}

type userView struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"type"`
	Prefix   string      `json:"prefix"`
}

// Login godoc
// @Summary     Login
// @Description Неверный логин и неверный пароль дают одинаковый 401 —
// @Description существование пользователя не раскрываем. После серии
// @Description неудач с одного адреса — 429 с оценкой остатка блокировки.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body loginRequest true "credentials"
// @Success     200 {object} loginResponse
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     429 {object} object
// @Router      /api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"
	reqID := mw.RequestIDFromCtx(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Username == "" || req.Password == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	key := clientKey(r)
	st, err := h.Limiter.Check(r.Context(), key)
	if err != nil {
		logx.Error(h.Log, reqID, op, "limiter check failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if st.Blocked {
		logx.Info(h.Log, reqID, op, "blocked", "key", key)
		v1.WriteRateLimited(w, r, st.Retry)
		return
	}

	u, err := h.Users.ActiveByUsername(r.Context(), req.Username)
	if err != nil {
		h.recordFail(w, r, key, op)
		return
	}
	ok, err := h.Hasher.Verify(req.Password, u.PassHash)
	if err != nil {
		logx.Error(h.Log, reqID, op, "verify failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if !ok {
		h.recordFail(w, r, key, op)
		return
	}

	token, _, err := h.Tokens.Issue(r.Context(), u)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue failed", err, "user", u.Username)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if err := h.Limiter.Reset(r.Context(), key); err != nil {
		// вход уже состоялся, сбой сброса счётчика — только в лог
		logx.Error(h.Log, reqID, op, "limiter reset failed", err)
	}

	h.setSession(w, token)
	logx.Info(h.Log, reqID, op, "ok", "user", u.Username)
	v1.WriteOK(w, r, loginResponse{Success: true, User: viewOf(u)})
}

// recordFail регистрирует неудачную попытку и отвечает 401 либо 429,
// если эта попытка была последней разрешённой.
func (h *Handler) recordFail(w http.ResponseWriter, r *http.Request, key, op string) {
	reqID := mw.RequestIDFromCtx(r.Context())
	st, err := h.Limiter.Fail(r.Context(), key)
	if err != nil {
		logx.Error(h.Log, reqID, op, "limiter fail failed", err)
	}
	if st.Blocked {
		logx.Info(h.Log, reqID, op, "block started", "key", key)
		v1.WriteRateLimited(w, r, st.Retry)
		return
	}
	v1.WriteDomainError(w, r, domain.ErrUnauth)
}

func viewOf(u domain.User) userView {
	return userView{ID: u.ID, Username: u.Username, Role: u.Role, Prefix: u.Prefix}
}
