package importitems

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"accreditations/internal/common"
	mg "accreditations/internal/config/connections/mongo"
	"accreditations/internal/ports"

	"github.com/google/uuid"
)

// MongoTracker stores import jobs in import_records and row outcomes in
// import_record_items.
type MongoTracker struct {
	MG *mg.Mongo
}

func NewMongoTracker(m *mg.Mongo) *MongoTracker { return &MongoTracker{MG: m} }

func (t *MongoTracker) Start(ctx context.Context, job ports.ImportJob) (string, error) {
	return InsertImportRecord(ctx, t.MG, Record{
		Status: ports.ImportStatusStarted,
		Type:   job.Type,
		Path:   job.FilePath,
	})
}

func (t *MongoTracker) Item(ctx context.Context, it ports.ImportItem) {
	if _, err := InsertItem(ctx, t.MG, Item{
		ImportRecordID: it.JobID,
		ModelID:        it.ModelID,
		Payload:        mustJSON(it.Payload),
		Status:         it.Status,
		Errors:         it.Errors,
	}); err != nil {
		log.Printf("[IMPORTS][MONGO][ERR] job=%s model_id=%s status=%s err=%v", it.JobID, it.ModelID, it.Status, err)
	}
}

func (t *MongoTracker) Finish(ctx context.Context, jobID, status string, rows int) error {
	return UpdateImportRecordStatus(ctx, t.MG, jobID, status, rows)
}

func (t *MongoTracker) Job(ctx context.Context, jobID string) (ports.ImportJobStatus, error) {
	rec, err := FindImportRecordByID(ctx, t.MG, jobID)
	if err != nil {
		return ports.ImportJobStatus{}, err
	}
	return rec.status(), nil
}

// LogTracker is used when Mongo is disabled: jobs get a random id, job state
// lives in process memory and row outcomes only reach the log.
type LogTracker struct {
	Logger *log.Logger

	mu   sync.Mutex
	jobs map[string]ports.ImportJobStatus
}

func NewLogTracker(l *log.Logger) *LogTracker {
	if l == nil {
		l = log.Default()
	}
	return &LogTracker{Logger: l, jobs: make(map[string]ports.ImportJobStatus)}
}

func (t *LogTracker) Start(_ context.Context, job ports.ImportJob) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	t.mu.Lock()
	t.jobs[id] = ports.ImportJobStatus{
		ID:        id,
		Type:      job.Type,
		FilePath:  job.FilePath,
		Status:    ports.ImportStatusStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.mu.Unlock()

	t.Logger.Printf("[IMPORTS][START] job=%s type=%q path=%q", id, job.Type, job.FilePath)
	return id, nil
}

func (t *LogTracker) Item(_ context.Context, it ports.ImportItem) {
	if it.Status == ports.ImportStatusFailed {
		t.Logger.Printf("[IMPORTS][ITEM][ERR] job=%s err=%s", it.JobID, it.Errors)
	}
}

func (t *LogTracker) Finish(_ context.Context, jobID, status string, rows int) error {
	t.mu.Lock()
	if job, ok := t.jobs[jobID]; ok {
		job.Status = status
		job.Rows = rows
		job.UpdatedAt = time.Now().UTC()
		t.jobs[jobID] = job
	}
	t.mu.Unlock()

	t.Logger.Printf("[IMPORTS][FINISH] job=%s status=%s rows=%d", jobID, status, rows)
	return nil
}

func (t *LogTracker) Job(_ context.Context, jobID string) (ports.ImportJobStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[jobID]
	if !ok {
		return ports.ImportJobStatus{}, fmt.Errorf("import job %s: %w", jobID, common.ErrNotFound)
	}
	return job, nil
}

var (
	_ ports.ImportTracker   = (*MongoTracker)(nil)
	_ ports.ImportTracker   = (*LogTracker)(nil)
	_ ports.ImportJobReader = (*MongoTracker)(nil)
	_ ports.ImportJobReader = (*LogTracker)(nil)
)
