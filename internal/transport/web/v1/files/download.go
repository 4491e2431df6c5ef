package files

import (
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/policy"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type downloadResponse struct {
	URL string `json:"url"`
}

// Download godoc
// @Summary     Issue download URL
// @Description Presigned GET на час; отсутствующий объект — 404.
// @Tags        files
// @Produce     json
// @Param       key query string true "object key"
// @Success     200 {object} downloadResponse
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Failure     404 {object} object
// @Router      /api/v1/files/download [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	const op = "files.download"
	reqID := mw.RequestIDFromCtx(r.Context())

	p, ok := principal(w, r)
	if !ok {
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	effective, err := h.Policy.Authorize(p, key, policy.OpDownload)
	if err != nil {
		logx.Error(h.Log, reqID, op, "authorize failed", err, "user", p.Username, "key", key)
		v1.WriteDomainError(w, r, err)
		return
	}

	url, err := h.Storage.PresignGet(r.Context(), effective)
	if err != nil {
		logx.Error(h.Log, reqID, op, "presign failed", err, "key", effective)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user", p.Username, "key", effective)
	v1.WriteOK(w, r, downloadResponse{URL: url})
}
