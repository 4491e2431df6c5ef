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

type deleteRequest struct {
	Key  string `json:"key"`
	Type string `json:"type"` // file | folder
}

type deleteResponse struct {
	Success bool `json:"success"`
}

// Delete godoc
// @Summary     Delete file or folder
// @Description Папка удаляется рекурсивно (best-effort, батчами); пустое
// @Description дерево — успешный no-op.
// @Tags        files
// @Accept      json
// @Produce     json
// @Param       request body deleteRequest true "key, type"
// @Success     200 {object} deleteResponse
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Router      /api/v1/files/delete [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "files.delete"
	reqID := mw.RequestIDFromCtx(r.Context())

	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Key == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	if req.Type == "folder" {
		prefix, err := h.Policy.Authorize(p, req.Key, policy.OpDeleteTree)
		if err != nil {
			logx.Error(h.Log, reqID, op, "authorize failed", err, "user", p.Username, "key", req.Key)
			v1.WriteDomainError(w, r, err)
			return
		}
		if err := h.Storage.DeleteTree(r.Context(), prefix); err != nil {
			logx.Error(h.Log, reqID, op, "delete tree failed", err, "prefix", prefix)
			v1.WriteDomainError(w, r, err)
			return
		}
		logx.Info(h.Log, reqID, op, "tree ok", "user", p.Username, "prefix", prefix)
		v1.WriteOK(w, r, deleteResponse{Success: true})
		return
	}

	key, err := h.Policy.Authorize(p, req.Key, policy.OpDelete)
	if err != nil {
		logx.Error(h.Log, reqID, op, "authorize failed", err, "user", p.Username, "key", req.Key)
		v1.WriteDomainError(w, r, err)
		return
	}
	if err := h.Storage.DeleteOne(r.Context(), key); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "key", key)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user", p.Username, "key", key)
	v1.WriteOK(w, r, deleteResponse{Success: true})
}
