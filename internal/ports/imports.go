package ports

import (
	"context"
	"time"
)

// ImportTracker records bulk-import jobs and their per-row outcomes.
type ImportTracker interface {
	Start(ctx context.Context, job ImportJob) (string, error)
	Item(ctx context.Context, item ImportItem)
	Finish(ctx context.Context, jobID, status string, rows int) error
}

// ImportJobReader returns the stored state of a job, or common.ErrNotFound.
type ImportJobReader interface {
	Job(ctx context.Context, jobID string) (ImportJobStatus, error)
}

type ImportJobStatus struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	FilePath  string    `json:"file_path"`
	Status    string    `json:"status"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ImportJob struct {
	Type     string
	FilePath string
}

type ImportItem struct {
	JobID   string
	ModelID string
	Payload map[string]string
	Status  string
	Errors  string
}

const (
	ImportStatusStarted = "started"
	ImportStatusDone    = "done"
	ImportStatusFailed  = "failed"
)
