// Package exporter writes accreditation records to an XLSX workbook whose
// header row uses the form keys, so an export can be imported back.
package exporter

import (
	"context"
	"fmt"
	"io"
	"log"

	"accreditations/internal/models"
	"accreditations/internal/services/records"

	"github.com/xuri/excelize/v2"
)

const SheetName = "registros"

// Lister is satisfied by the record service and the stores.
type Lister interface {
	List(ctx context.Context) ([]models.Record, error)
}

type Exporter struct {
	Source Lister
}

func New(src Lister) *Exporter { return &Exporter{Source: src} }

// Export writes every record as one row and returns the number of rows.
func (e *Exporter) Export(ctx context.Context, w io.Writer) (int, error) {
	recs, err := e.Source.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return 0, err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return 0, err
	}

	header := make([]any, len(records.Fields))
	for i, fd := range records.Fields {
		header[i] = fd.Key
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{}); err != nil {
		return 0, err
	}

	for i := range recs {
		row := make([]any, len(records.Fields))
		for j, fd := range records.Fields {
			row[j] = fd.Value(&recs[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return 0, err
	}
	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write xlsx: %w", err)
	}

	log.Printf("[EXPORT][OK] rows=%d", len(recs))
	return len(recs), nil
}
