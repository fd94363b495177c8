package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"accreditations/internal/common"
	"accreditations/internal/services/importer"

	"github.com/go-chi/chi/v5"
)

type importRequest struct {
	Type       string `json:"type"`
	FilePath   string `json:"file_path"`
	BatchSize  int    `json:"batch_size"`
	TimeoutMin int    `json:"timeout_minutes,omitempty"`
}

// Import starts a bulk import in the background. Only s3:// and http(s)://
// sources are accepted over HTTP.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.Logger.Printf("[IMPORT][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}
	req.FilePath = strings.TrimSpace(req.FilePath)
	if req.FilePath == "" {
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "file_path is required"})
		return
	}
	if req.BatchSize <= 0 {
		req.BatchSize = 1000
	}

	ireq := importer.Request{Type: req.Type, FilePath: req.FilePath, BatchSize: req.BatchSize}
	jobID, err := h.Importer.Start(r.Context(), ireq)
	if err != nil {
		h.Logger.Printf("[IMPORT][REQ][ERR] start job: %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]string{"error": "could not start import"})
		return
	}
	ireq.JobID = jobID

	timeout := h.ImportTimeout
	if req.TimeoutMin > 0 {
		timeout = time.Duration(req.TimeoutMin) * time.Minute
	}

	go func() {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := h.Importer.Import(ctx, ireq)
		if err != nil {
			h.Logger.Printf("[IMPORT][ERR][BG] job=%s path=%q err=%v took=%s", jobID, ireq.FilePath, err, time.Since(start))
			return
		}
		h.Logger.Printf("[IMPORT][OK][BG] job=%s src=%s fmt=%s rows=%d took=%s",
			jobID, res.Source, res.Format, res.RowsProcessed, time.Since(start))
	}()

	h.JSON(w, http.StatusAccepted, map[string]any{
		"status":     "started",
		"job_id":     jobID,
		"file_path":  req.FilePath,
		"batch_size": req.BatchSize,
	})
}

// ImportStatus reports the tracked state of one import job.
func (h *Handlers) ImportStatus(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]string{"error": "import tracking disabled"})
		return
	}
	jobID := chi.URLParam(r, "job_id")
	job, err := h.Jobs.Job(r.Context(), jobID)
	if errors.Is(err, common.ErrNotFound) {
		h.JSON(w, http.StatusNotFound, map[string]string{"error": "import job not found"})
		return
	}
	if err != nil {
		h.Logger.Printf("[IMPORT][STATUS][ERR] job=%s err=%v", jobID, err)
		h.JSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read import job"})
		return
	}
	h.JSON(w, http.StatusOK, job)
}
