package files

import (
	"net/http"
	"time"

	"github.com/MathBio-Lab/s3-output-manager/internal/policy"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

type listItem struct {
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	Type         string     `json:"type"` // folder | file
	Size         *int64     `json:"size,omitempty"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

type listResponse struct {
	Items     []listItem `json:"items"`
	Truncated bool       `json:"truncated,omitempty"`
}

// List godoc
// @Summary     List folder contents
// @Description Одноуровневый листинг префикса; пустой prefix — корень субъекта.
// @Tags        files
// @Produce     json
// @Param       prefix query string false "folder prefix"
// @Success     200 {object} listResponse
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Failure     500 {object} object
// @Router      /api/v1/files/list [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "files.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	p, ok := principal(w, r)
	if !ok {
		return
	}

	requested := r.URL.Query().Get("prefix")
	effective, err := h.Policy.Authorize(p, requested, policy.OpList)
	if err != nil {
		logx.Error(h.Log, reqID, op, "authorize failed", err, "user", p.Username, "prefix", requested)
		v1.WriteDomainError(w, r, err)
		return
	}

	listing, err := h.Storage.List(r.Context(), effective)
	if err != nil {
		logx.Error(h.Log, reqID, op, "storage list failed", err, "prefix", effective)
		v1.WriteDomainError(w, r, err)
		return
	}

	items := make([]listItem, 0, len(listing.Folders)+len(listing.Files))
	for _, f := range listing.Folders {
		items = append(items, listItem{Name: f.Name, Path: f.Path, Type: "folder"})
	}
	for _, f := range listing.Files {
		size := f.Size
		lm := f.LastModified
		items = append(items, listItem{Name: f.Name, Path: f.Path, Type: "file", Size: &size, LastModified: &lm})
	}

	logx.Info(h.Log, reqID, op, "ok", "user", p.Username, "prefix", effective, "items", len(items))
	v1.WriteOK(w, r, listResponse{Items: items, Truncated: listing.Truncated})
}
