package files

import (
	"encoding/json"
	"net/http"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/policy"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type uploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Prefix      string `json:"prefix"`
}

type uploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

// Upload godoc
// @Summary     Issue upload URL
// @Description Presigned PUT на час; байты клиент заливает в стор напрямую.
// @Tags        files
// @Accept      json
// @Produce     json
// @Param       request body uploadRequest true "filename, contentType, prefix"
// @Success     200 {object} uploadResponse
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Router      /api/v1/files/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "files.upload"
	reqID := mw.RequestIDFromCtx(r.Context())

	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Filename == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	effective, err := h.Policy.Authorize(p, req.Prefix, policy.OpUpload)
	if err != nil {
		logx.Error(h.Log, reqID, op, "authorize failed", err, "user", p.Username, "prefix", req.Prefix)
		v1.WriteDomainError(w, r, err)
		return
	}

	key, err := h.Policy.JoinKey(effective, req.Filename)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad filename", err, "filename", req.Filename)
		v1.WriteDomainError(w, r, err)
		return
	}

	uploadURL, err := h.Storage.PresignPut(r.Context(), key, req.ContentType)
	if err != nil {
		logx.Error(h.Log, reqID, op, "presign failed", err, "key", key)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user", p.Username, "key", key)
	v1.WriteOK(w, r, uploadResponse{UploadURL: uploadURL, Key: key})
}
