package records

import (
	"context"
	"errors"
	"log"
	"net/url"

	"accreditations/internal/common"
	"accreditations/internal/metrics"
	"accreditations/internal/models"
	"accreditations/internal/ports"
)

// Service implements the record lifecycle and the national ID lookup on top
// of a RecordStore.
type Service struct {
	Store   ports.RecordStore
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

func NewService(store ports.RecordStore, m *metrics.Metrics, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{Store: store, Metrics: m, Logger: logger}
}

// Create builds a record from a full submission and persists it.
func (s *Service) Create(ctx context.Context, form url.Values) (*models.Record, error) {
	rec := &models.Record{}
	if err := Apply(form, rec); err != nil {
		s.Logger.Printf("[RECORDS][CREATE][ERR] %v", err)
		return nil, err
	}

	if err := s.Store.Create(ctx, rec); err != nil {
		s.Logger.Printf("[RECORDS][CREATE][ERR] cedula=%q err=%v", rec.NationalID, err)
		return nil, err
	}

	s.Metrics.IncCreated()
	s.Logger.Printf("[RECORDS][CREATE][OK] id=%d cedula=%q", rec.ID, rec.NationalID)
	return rec, nil
}

// Update applies a submission over the stored record. Required keys replace
// their values; optional keys missing from form keep the stored ones.
func (s *Service) Update(ctx context.Context, id int64, form url.Values) (*models.Record, error) {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		s.Logger.Printf("[RECORDS][UPDATE][ERR] id=%d err=%v", id, err)
		return nil, err
	}

	if err := Apply(form, rec); err != nil {
		s.Logger.Printf("[RECORDS][UPDATE][ERR] id=%d %v", id, err)
		return nil, err
	}

	if err := s.Store.Update(ctx, rec); err != nil {
		s.Logger.Printf("[RECORDS][UPDATE][ERR] id=%d cedula=%q err=%v", id, rec.NationalID, err)
		return nil, err
	}

	s.Metrics.IncUpdated()
	s.Logger.Printf("[RECORDS][UPDATE][OK] id=%d cedula=%q", rec.ID, rec.NationalID)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		s.Logger.Printf("[RECORDS][DELETE][ERR] id=%d err=%v", id, err)
		return err
	}
	s.Metrics.IncDeleted()
	s.Logger.Printf("[RECORDS][DELETE][OK] id=%d", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Record, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	return s.Store.List(ctx)
}

// FindByNationalID reports found=false, with a nil error, when no record
// carries the given national ID.
func (s *Service) FindByNationalID(ctx context.Context, cedula string) (*models.Record, bool, error) {
	rec, err := s.Store.FindByNationalID(ctx, cedula)
	if errors.Is(err, common.ErrNotFound) {
		s.Metrics.IncLookup(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.Metrics.IncLookup(true)
	return rec, true, nil
}
