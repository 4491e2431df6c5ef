package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrBadParams       = errors.New("bad_params")        // 400
	ErrUnauth          = errors.New("unauthorized")      // 401
	ErrForbidden       = errors.New("forbidden")         // 403
	ErrNotFound        = errors.New("not_found")         // 404
	ErrConflict        = errors.New("conflict")          // 409 (например, дубликат username)
	ErrTooManyRequests = errors.New("too_many_requests") // 429
	ErrUnexpected      = errors.New("unexpected")        // 500
)

// Коды для тела ошибки
const (
	ErrCodeBadParams       = 1000
	ErrCodeUnauth          = 1001
	ErrCodeForbidden       = 1003
	ErrCodeNotFound        = 1004
	ErrCodeConflict        = 1009
	ErrCodeTooManyRequests = 1029
	ErrCodeUnexpected      = 1500
)
