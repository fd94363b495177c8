package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"accreditations/internal/common"
	"accreditations/internal/models"
)

// Memory is an in-process RecordStore. It hands out copies, so callers never
// share state with the store.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]models.Record
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{records: make(map[int64]models.Record), nextID: 1}
}

func (m *Memory) Create(_ context.Context, rec *models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nationalIDTaken(rec.NationalID, 0) {
		return common.ErrDuplicateKey
	}

	rec.ID = m.nextID
	m.nextID++
	m.records[rec.ID] = clone(*rec)
	return nil
}

func (m *Memory) Get(_ context.Context, id int64) (*models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := clone(rec)
	return &out, nil
}

func (m *Memory) Update(_ context.Context, rec *models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; !ok {
		return common.ErrNotFound
	}
	if m.nationalIDTaken(rec.NationalID, rec.ID) {
		return common.ErrDuplicateKey
	}
	m.records[rec.ID] = clone(*rec)
	return nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Record, 0, len(m.records))
	for _, id := range m.sortedIDs() {
		out = append(out, clone(m.records[id]))
	}
	return out, nil
}

func (m *Memory) FindByNationalID(_ context.Context, nationalID string) (*models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.sortedIDs() {
		if rec := m.records[id]; rec.NationalID == nationalID {
			out := clone(rec)
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *Memory) CountByCity(_ context.Context) ([]models.CityCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, rec := range m.records {
		counts[rec.City]++
	}

	out := make([]models.CityCount, 0, len(counts))
	for city, n := range counts {
		out = append(out, models.CityCount{City: city, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].City < out[j].City })
	return out, nil
}

func (m *Memory) Ages(_ context.Context) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]int, 0, len(m.records))
	for _, id := range m.sortedIDs() {
		if age := m.records[id].Age; age != nil {
			out = append(out, *age)
		}
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) nationalIDTaken(nationalID string, except int64) bool {
	for id, rec := range m.records {
		if id != except && rec.NationalID == nationalID {
			return true
		}
	}
	return false
}

func (m *Memory) sortedIDs() []int64 {
	ids := make([]int64, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func clone(r models.Record) models.Record {
	r.Age = clonePtr(r.Age)
	r.MentalHealthCertExpiry = clonePtr(r.MentalHealthCertExpiry)
	for i := range r.Renewals {
		r.Renewals[i].Date = clonePtr(r.Renewals[i].Date)
	}
	return r
}

func clonePtr[T int | time.Time](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
