package handlers

import (
	"context"
	"net/http"
	"time"
)

type healthResp struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// Health pings the record store and whichever optional backends are enabled.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var errs []string

	if err := h.Records.Store.Ping(ctx); err != nil {
		errs = append(errs, "store ping failed: "+err.Error())
	}

	if h.Mongo != nil {
		if err := h.Mongo.Client.Ping(ctx, nil); err != nil {
			errs = append(errs, "mongo ping failed: "+err.Error())
		}
	}

	if h.S3 != nil {
		if ok, err := h.S3.Client.BucketExists(ctx, h.S3.Bucket); err != nil {
			errs = append(errs, "s3 bucket check failed: "+err.Error())
		} else if !ok {
			errs = append(errs, `s3 bucket "`+h.S3.Bucket+`" not found`)
		}
	}

	if len(errs) > 0 {
		h.JSON(w, http.StatusInternalServerError, healthResp{OK: false, Errors: errs})
		return
	}
	h.JSON(w, http.StatusOK, healthResp{OK: true})
}
