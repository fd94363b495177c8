package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"accreditations/internal/common"
	"accreditations/internal/config/connections/mongo"
	"accreditations/internal/config/connections/s3"
	"accreditations/internal/metrics"
	"accreditations/internal/ports"
	"accreditations/internal/services/exporter"
	"accreditations/internal/services/importer"
	"accreditations/internal/services/records"
	"accreditations/internal/services/stats"

	"github.com/go-chi/chi/v5"
	gomponents "maragu.dev/gomponents"
)

type Handlers struct {
	Records  *records.Service
	Stats    *stats.Service
	Importer *importer.Service
	Exporter *exporter.Exporter
	Jobs     ports.ImportJobReader

	// Optional backends, nil when disabled.
	Mongo *mongo.Mongo
	S3    *s3.S3

	Metrics       *metrics.Metrics
	ImportTimeout time.Duration
	Logger        *log.Logger
}

type Deps struct {
	Records  *records.Service
	Stats    *stats.Service
	Importer *importer.Service
	Exporter *exporter.Exporter
	Jobs     ports.ImportJobReader
	Mongo    *mongo.Mongo
	S3       *s3.S3
	Metrics  *metrics.Metrics
	Logger   *log.Logger
}

func New(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{
		Records:       d.Records,
		Stats:         d.Stats,
		Importer:      d.Importer,
		Exporter:      d.Exporter,
		Jobs:          d.Jobs,
		Mongo:         d.Mongo,
		S3:            d.S3,
		Metrics:       d.Metrics,
		ImportTimeout: 15 * time.Minute,
		Logger:        logger,
	}
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, common.ErrParse), errors.Is(err, common.ErrMissingField):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail renders the error page. Internal errors are logged and not shown.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Printf("[HTTP][ERR] %s %s: %v", r.Method, r.URL.Path, err)
		msg = "Ocurrió un error interno."
	}
	renderHTML(w, status, errorPage(http.StatusText(status), msg))
}

// recordID reads {id}; anything that is not an integer names no record.
func recordID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, common.ErrNotFound
	}
	return id, nil
}
