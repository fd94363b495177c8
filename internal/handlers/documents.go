package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"accreditations/internal/adapters/opener"
	"accreditations/internal/services/records"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// UploadDocument accepts multipart/form-data with `file` and `kind` fields,
// where kind is one of the document form keys, and stores the file in S3.
// The response carries the s3:// path to submit in that field.
func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if h.S3 == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]any{"error": "document storage is disabled"})
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.Logger.Printf("[DOCS][ERR] parse multipart: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad multipart: " + err.Error()})
		return
	}

	kind := r.FormValue("kind")
	if f, ok := records.FieldByKey(kind); !ok || f.Kind != records.KindDocument {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("kind %q is not a document field", kind)})
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		h.Logger.Printf("[DOCS][ERR] missing file: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "file is required"})
		return
	}
	defer f.Close()

	key := fmt.Sprintf("documents/%s/%s-%s", kind, uuid.NewString(), path.Base(fh.Filename))

	size := fh.Size
	if size <= 0 {
		size = -1
	}

	info, err := h.S3.Client.PutObject(r.Context(), h.S3.Bucket, key, f, size, minio.PutObjectOptions{ContentType: fh.Header.Get("Content-Type")})
	if err != nil {
		h.Logger.Printf("[DOCS][ERR] s3 put: %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to store file"})
		return
	}

	p := h.S3.ObjectPath(key)
	h.Logger.Printf("[DOCS][OK] kind=%s path=%s size=%d", kind, p, info.Size)
	h.JSON(w, http.StatusCreated, map[string]any{"path": p})
}

// DownloadDocument streams an object of the configured bucket given its
// s3:// path.
func (h *Handlers) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	if h.S3 == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]any{"error": "document storage is disabled"})
		return
	}

	bucket, key, err := opener.ParseS3URL(r.URL.Query().Get("path"))
	if err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "path: " + err.Error()})
		return
	}
	if bucket != h.S3.Bucket {
		h.JSON(w, http.StatusNotFound, map[string]any{"error": "unknown bucket"})
		return
	}

	rc, meta, err := opener.NewS3Opener(h.S3.Client).Open(r.Context(), bucket, key)
	if err != nil {
		var er minio.ErrorResponse
		if errors.As(err, &er) && er.StatusCode == http.StatusNotFound {
			h.JSON(w, http.StatusNotFound, map[string]any{"error": "document not found"})
			return
		}
		h.Logger.Printf("[DOCS][ERR] open %s: %v", key, err)
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to read file"})
		return
	}
	defer rc.Close()

	ct := meta.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": path.Base(key)}))
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Printf("[DOCS][ERR] stream %s: %v", key, err)
	}
}
