package importer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"accreditations/internal/ports"

	"github.com/xuri/excelize/v2"
)

// MaxFileSize bounds how much of a source file is read into memory.
const MaxFileSize = 64 << 20

const DefaultType = "records"

type Request struct {
	Type      string
	FilePath  string
	BatchSize int
	// JobID is set when the caller already started the job on the tracker.
	JobID string
}

type Result struct {
	JobID         string
	Source        string
	FilePath      string
	Format        string
	RowsProcessed int
	SHA256        string
	ContentType   string
	Bucket        string
	Key           string
	SizeBytes     int64
}

type Service struct {
	Opener     ports.FileOpener
	Processors map[string]ports.Processor
	Tracker    ports.ImportTracker
	DefaultBS  int
}

func NewService(opener ports.FileOpener, registry map[string]ports.Processor, tracker ports.ImportTracker, defaultBatch int) *Service {
	if defaultBatch <= 0 {
		defaultBatch = 1000
	}
	return &Service{Opener: opener, Processors: registry, Tracker: tracker, DefaultBS: defaultBatch}
}

// Start registers a job on the tracker without running it.
func (s *Service) Start(ctx context.Context, req Request) (string, error) {
	return s.Tracker.Start(ctx, ports.ImportJob{Type: typeOrDefault(req.Type), FilePath: req.FilePath})
}

// Import runs a job to completion. The job is started on the tracker unless
// req.JobID is set, and always finished with the outcome.
func (s *Service) Import(ctx context.Context, req Request) (res Result, err error) {
	t0 := time.Now()
	req.Type = typeOrDefault(req.Type)

	if req.JobID == "" {
		if req.JobID, err = s.Start(ctx, req); err != nil {
			return Result{}, fmt.Errorf("start import job: %w", err)
		}
	}
	res.JobID = req.JobID
	ctx = context.WithValue(ctx, ports.CtxImportJobID, req.JobID)
	log.Printf("[IMP][START] job=%s type=%q path=%q batch_size=%d", req.JobID, req.Type, req.FilePath, req.BatchSize)

	defer func() {
		status := ports.ImportStatusDone
		if err != nil {
			status = ports.ImportStatusFailed
		}
		// the job context may already be cancelled
		finCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if ferr := s.Tracker.Finish(finCtx, req.JobID, status, res.RowsProcessed); ferr != nil {
			log.Printf("[IMP][WARN] job=%s finish tracking: %v", req.JobID, ferr)
		}
	}()

	proc, ok := s.Processors[req.Type]
	if !ok {
		log.Printf("[IMP][ERR] no processor for type=%q", req.Type)
		return res, errors.New("no processor for type: " + req.Type)
	}

	rc, meta, err := s.Opener.Open(ctx, req.FilePath)
	if err != nil {
		log.Printf("[IMP][ERR] open: %v", err)
		return res, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return res, fmt.Errorf("read source: %w", err)
	}
	if len(data) > MaxFileSize {
		return res, fmt.Errorf("source larger than %d bytes", MaxFileSize)
	}
	sum := sha256.Sum256(data)

	format := detectFormat(req.FilePath, meta.ContentType)
	log.Printf("[IMP] source=%s content_type=%q size=%d detected_format=%s", meta.Source, meta.ContentType, len(data), format)

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = s.DefaultBS
	}

	// Unknown formats try XLSX first; a failed guess falls back to the other
	// reader over the same bytes.
	order := []string{"xlsx", "csv"}
	if format == "csv" {
		order = []string{"csv", "xlsx"}
	}

	var total int
	var readErr error
	for _, f := range order {
		b := newBatcher(ctx, proc, batchSize)
		if f == "xlsx" {
			readErr = readXLSXFirstSheet(bytes.NewReader(data), b)
		} else {
			readErr = readCSV(bytes.NewReader(data), b)
		}
		total = b.total
		if readErr == nil || b.total > 0 || b.procFailed {
			format = f
			break
		}
		log.Printf("[IMP][%s][ERR] %v", strings.ToUpper(f), readErr)
	}

	res = Result{
		JobID:         req.JobID,
		Source:        meta.Source,
		FilePath:      req.FilePath,
		Format:        format,
		RowsProcessed: total,
		SHA256:        hex.EncodeToString(sum[:]),
		ContentType:   meta.ContentType,
		Bucket:        meta.Bucket,
		Key:           meta.Key,
		SizeBytes:     int64(len(data)),
	}
	if readErr != nil {
		log.Printf("[IMP][ERR] job=%s read pipeline: %v", req.JobID, readErr)
		return res, readErr
	}

	log.Printf("[IMP][DONE] job=%s fmt=%s rows=%d sha256=%s duration=%s", req.JobID, format, total, res.SHA256, time.Since(t0))
	return res, nil
}

// batcher groups rows and hands full batches to the processor.
type batcher struct {
	ctx     context.Context
	proc    ports.Processor
	size    int
	batch   []map[string]string
	total   int
	batches int

	// procFailed marks errors raised by the processor rather than the reader.
	procFailed bool
}

func newBatcher(ctx context.Context, proc ports.Processor, size int) *batcher {
	return &batcher{ctx: ctx, proc: proc, size: size, batch: make([]map[string]string, 0, size)}
}

func (b *batcher) add(row map[string]string) error {
	if isBlank(row) {
		return nil
	}
	b.batch = append(b.batch, row)
	if len(b.batch) >= b.size {
		return b.flush()
	}
	return nil
}

func (b *batcher) flush() error {
	if len(b.batch) == 0 {
		return nil
	}
	if err := b.ctx.Err(); err != nil {
		return err
	}
	log.Printf("[IMP] send batch #%d size=%d total_so_far=%d", b.batches+1, len(b.batch), b.total)
	if err := b.proc.ProcessBatch(b.ctx, b.batch); err != nil {
		b.procFailed = true
		return err
	}
	b.total += len(b.batch)
	b.batches++
	b.batch = make([]map[string]string, 0, b.size)
	return nil
}

func readCSV(r io.Reader, b *batcher) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	log.Printf("[IMP][CSV] header=%v", header)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[IMP][CSV][WARN] read row err: %v", err)
			continue
		}
		if err := b.add(toMap(header, record)); err != nil {
			return err
		}
	}
	return b.flush()
}

func readXLSXFirstSheet(r io.Reader, b *batcher) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return errors.New("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		return rows.Error()
	}
	header, err := rows.Columns()
	if err != nil {
		return err
	}
	log.Printf("[IMP][XLSX] sheet=%q header=%v", sheet, header)

	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			log.Printf("[IMP][XLSX][WARN] read row err: %v", err)
			continue
		}
		if err := b.add(toMap(header, cols)); err != nil {
			return err
		}
	}
	if err := rows.Error(); err != nil {
		return err
	}
	return b.flush()
}

func toMap(header []string, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, key := range header {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		val := ""
		if i < len(row) {
			val = row[i]
		}
		m[key] = strings.TrimSpace(val)
	}
	return m
}

func isBlank(row map[string]string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func typeOrDefault(t string) string {
	if strings.TrimSpace(t) == "" {
		return DefaultType
	}
	return t
}

func detectFormat(filePath, contentType string) string {
	p := filePath
	if u, err := url.Parse(filePath); err == nil && u != nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch ext {
	case "xlsx":
		return "xlsx"
	case "csv":
		return "csv"
	}
	med, _, _ := mime.ParseMediaType(contentType)
	switch med {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "text/csv", "application/csv", "text/plain":
		return "csv"
	}
	return ""
}
