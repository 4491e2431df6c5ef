package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type Pinger interface {
	Ping(context.Context) error
}

// Cache может быть nil — Redis опционален, без него троттлинг
// логина живёт в памяти процесса.
type Handler struct {
	Log     *log.Logger
	DB      Pinger
	Cache   Pinger
	Storage Pinger
}

type statusResponse struct {
	Status string `json:"status"`
}

// Liveness godoc
// @Summary      Liveness probe
// @Description  Проверка, жив ли сервис (не зависит от БД/кэша/стора)
// @Tags         health
// @Produce      json
// @Success      200 {object} statusResponse
// @Router       /api/v1/healthz [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	const op = "health.liveness"
	reqID := mw.RequestIDFromCtx(r.Context())

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteOK(w, r, statusResponse{Status: "ok"})
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Проверка готовности: пинг БД, кэша (если настроен) и стора
// @Tags         health
// @Produce      json
// @Success      200 {object} statusResponse
// @Failure      503 {object} statusResponse
// @Router       /api/v1/readyz [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "db ping failed", err)
		v1.WriteJSON(w, r, http.StatusServiceUnavailable, statusResponse{Status: "db unavailable"})
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, "cache ping failed", err)
			v1.WriteJSON(w, r, http.StatusServiceUnavailable, statusResponse{Status: "cache unavailable"})
			return
		}
	}

	if err := h.Storage.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "storage ping failed", err)
		v1.WriteJSON(w, r, http.StatusServiceUnavailable, statusResponse{Status: "storage unavailable"})
		return
	}

	logx.Info(h.Log, reqID, op, "ready")
	v1.WriteOK(w, r, statusResponse{Status: "ready"})
}
