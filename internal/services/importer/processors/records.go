package processors

import (
	"context"
	"log"
	"net/url"
	"strconv"

	"accreditations/internal/metrics"
	"accreditations/internal/models"
	"accreditations/internal/ports"
	"accreditations/internal/services/records"
	"accreditations/internal/utils"
)

// RecordCreator is the part of the record service an import needs.
type RecordCreator interface {
	Create(ctx context.Context, form url.Values) (*models.Record, error)
}

// RecordsProcessor creates one accreditation record per sheet row. Rows
// that fail are tracked and skipped.
type RecordsProcessor struct {
	Records RecordCreator
	Tracker ports.ImportTracker
	Metrics *metrics.Metrics
}

func NewRecordsProcessor(rc RecordCreator, tracker ports.ImportTracker, m *metrics.Metrics) *RecordsProcessor {
	return &RecordsProcessor{Records: rc, Tracker: tracker, Metrics: m}
}

func (p *RecordsProcessor) Type() string { return "records" }

func (p *RecordsProcessor) ProcessBatch(ctx context.Context, batch []map[string]string) error {
	jobID, _ := ctx.Value(ports.CtxImportJobID).(string)

	var ok, failed int
	for _, row := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := ports.ImportItem{JobID: jobID, Payload: row, Status: ports.ImportStatusDone}

		rec, err := p.Records.Create(ctx, RowForm(row))
		if err != nil {
			failed++
			item.Status = ports.ImportStatusFailed
			item.Errors = err.Error()
			log.Printf("[PROC][RECORDS][ERR] job=%s row=%q err=%v", jobID, rowID(row), err)
		} else {
			ok++
			item.ModelID = strconv.FormatInt(rec.ID, 10)
		}

		p.Metrics.IncImportRow(item.Status)
		if p.Tracker != nil {
			p.Tracker.Item(ctx, item)
		}
	}

	log.Printf("[PROC][RECORDS] job=%s batch=%d ok=%d failed=%d", jobID, len(batch), ok, failed)
	return nil
}

// RowForm turns a sheet row keyed by form keys into a submission.
//
// Required keys are always submitted, empty when the sheet lacks the column;
// optional cells only when filled. Flags are submitted only for truthy
// cells. A nombre_completo cell fills empty nombres and apellidos.
func RowForm(row map[string]string) url.Values {
	form := url.Values{}
	for _, f := range records.Fields {
		v := row[f.Key]
		switch {
		case f.Strategy == records.Presence:
			if isTruthy(v) {
				form.Set(f.Key, "1")
			}
		case f.Kind == records.KindDate:
			if v != "" {
				form.Set(f.Key, normalizeDate(v))
			}
		case f.Strategy == records.Required:
			form.Set(f.Key, v)
		case v != "":
			form.Set(f.Key, v)
		}
	}

	if full := row["nombre_completo"]; full != "" {
		given, surnames := utils.SplitFullName(full)
		if form.Get("nombres") == "" {
			form.Set("nombres", given)
		}
		if form.Get("apellidos") == "" {
			form.Set("apellidos", surnames)
		}
	}
	return form
}

var _ ports.Processor = (*RecordsProcessor)(nil)
