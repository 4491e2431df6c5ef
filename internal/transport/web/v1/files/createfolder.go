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

type createFolderRequest struct {
	ParentPath string `json:"parentPath"`
	FolderName string `json:"folderName"`
}

type createFolderResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

// CreateFolder godoc
// @Summary     Create empty folder
// @Description Пишет нулевой объект-маркер `parent/name/`. Пустой parentPath
// @Description для ограниченного субъекта означает его домашний префикс.
// @Tags        files
// @Accept      json
// @Produce     json
// @Param       request body createFolderRequest true "parentPath, folderName"
// @Success     200 {object} createFolderResponse
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Router      /api/v1/files/create-folder [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	const op = "files.create_folder"
	reqID := mw.RequestIDFromCtx(r.Context())

	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.FolderName == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	parent, err := h.Policy.Authorize(p, req.ParentPath, policy.OpCreateFolder)
	if err != nil {
		logx.Error(h.Log, reqID, op, "authorize failed", err, "user", p.Username, "parent", req.ParentPath)
		v1.WriteDomainError(w, r, err)
		return
	}

	key, err := h.Policy.JoinFolder(parent, req.FolderName)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad folder name", err, "name", req.FolderName)
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Storage.CreateMarker(r.Context(), key); err != nil {
		logx.Error(h.Log, reqID, op, "create marker failed", err, "key", key)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user", p.Username, "key", key)
	v1.WriteOK(w, r, createFolderResponse{Success: true, Path: key})
}
