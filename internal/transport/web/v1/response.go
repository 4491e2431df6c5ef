package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
)

// errorBody — формат тела ошибки. Текст намеренно общий: 403 не должен
// раскрывать авторизованный префикс, 500 — внутренности стора.
type errorBody struct {
	Error     string `json:"error"`
	Code      int    `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	// остаток блокировки для 429, в секундах
	RetryAfter int `json:"retryAfter,omitempty"`
}

// MapDomainError решает HTTP-статус + текст по доменной ошибке
func MapDomainError(err error) (int, errorBody) {
	switch {
	case errors.Is(err, domain.ErrBadParams):
		return http.StatusBadRequest, errorBody{Error: "bad request", Code: domain.ErrCodeBadParams}
	case errors.Is(err, domain.ErrUnauth):
		return http.StatusUnauthorized, errorBody{Error: "unauthorized", Code: domain.ErrCodeUnauth}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorBody{Error: "access denied", Code: domain.ErrCodeForbidden}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found", Code: domain.ErrCodeNotFound}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorBody{Error: "conflict", Code: domain.ErrCodeConflict}
	case errors.Is(err, domain.ErrTooManyRequests):
		return http.StatusTooManyRequests, errorBody{Error: "too many requests", Code: domain.ErrCodeTooManyRequests}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error", Code: domain.ErrCodeUnexpected}
	}
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", mw.RequestIDFromCtx(r.Context()))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteOK(w http.ResponseWriter, r *http.Request, payload any) {
	WriteJSON(w, r, http.StatusOK, payload)
}

func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := MapDomainError(err)
	// request id — корреляция с логами оператора, деталей наружу не несёт
	body.RequestID = mw.RequestIDFromCtx(r.Context())
	WriteJSON(w, r, status, body)
}

// WriteRateLimited — 429 с оценкой остатка блокировки.
func WriteRateLimited(w http.ResponseWriter, r *http.Request, retry time.Duration) {
	secs := int(retry.Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	body := errorBody{
		Error:      "too many failed attempts",
		Code:       domain.ErrCodeTooManyRequests,
		RequestID:  mw.RequestIDFromCtx(r.Context()),
		RetryAfter: secs,
	}
	WriteJSON(w, r, http.StatusTooManyRequests, body)
}
