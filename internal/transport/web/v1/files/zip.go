package files

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/policy"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/logx"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	v1 "github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1"
)

// Zip godoc
// @Summary     Download folder as zip
// @Description Стримит архив инкрементально, не буферизуя его целиком.
// @Description Маркеры папок в архив не попадают; ошибка отдельного
// @Description объекта пропускает член, а не валит весь архив.
// @Tags        files
// @Produce     application/zip
// @Param       prefix query string true "folder prefix"
// @Success     200 {file} []byte
// @Failure     400 {object} object
// @Failure     401 {object} object
// @Failure     403 {object} object
// @Failure     404 {object} object
// @Router      /api/v1/files/zip [get]
func (h *Handler) Zip(w http.ResponseWriter, r *http.Request) {
	const op = "files.zip"
	reqID := mw.RequestIDFromCtx(r.Context())

	p, ok := principal(w, r)
	if !ok {
		return
	}

	requested := r.URL.Query().Get("prefix")
	if requested == "" && p.Unrestricted() {
		// для админа пустой префикс означал бы зип всего бакета
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	prefix, err := h.Policy.Authorize(p, requested, policy.OpZip)
	if err != nil {
		logx.Error(h.Log, reqID, op, "authorize failed", err, "user", p.Username, "prefix", requested)
		v1.WriteDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.zip"`, zipFilename(prefix)))
	w.Header().Set("X-Request-ID", reqID)

	tw := &trackingWriter{w: w}
	if err := h.Storage.StreamZip(r.Context(), prefix, tw); err != nil {
		if tw.wrote {
			// статус уже ушёл клиенту, остаётся только залогировать
			logx.Error(h.Log, reqID, op, "stream aborted", err, "prefix", prefix)
			return
		}
		logx.Error(h.Log, reqID, op, "zip failed", err, "prefix", prefix)
		w.Header().Del("Content-Disposition")
		if errors.Is(err, domain.ErrNotFound) {
			v1.WriteDomainError(w, r, domain.ErrNotFound)
			return
		}
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user", p.Username, "prefix", prefix)
}

// zipFilename — последний сегмент префикса без завершающего "/".
func zipFilename(prefix string) string {
	trimmed := strings.TrimSuffix(prefix, "/")
	if trimmed == "" {
		return "archive"
	}
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return trimmed
}

// trackingWriter помнит, ушли ли уже байты клиенту: после первого Write
// сменить статус ответа невозможно.
type trackingWriter struct {
	w     http.ResponseWriter
	wrote bool
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	if len(b) > 0 {
		t.wrote = true
	}
	return t.w.Write(b)
}
