package processors

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"accreditations/internal/models"
	"accreditations/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	forms []url.Values
	fail  map[string]error
}

func (f *fakeCreator) Create(_ context.Context, form url.Values) (*models.Record, error) {
	if err := f.fail[form.Get("cedula")]; err != nil {
		return nil, err
	}
	f.forms = append(f.forms, form)
	return &models.Record{ID: int64(len(f.forms))}, nil
}

type fakeTracker struct {
	mu    sync.Mutex
	items []ports.ImportItem
}

func (f *fakeTracker) Start(context.Context, ports.ImportJob) (string, error) { return "job-1", nil }

func (f *fakeTracker) Item(_ context.Context, it ports.ImportItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, it)
}

func (f *fakeTracker) Finish(context.Context, string, string, int) error { return nil }

func TestRowForm(t *testing.T) {
	form := RowForm(map[string]string{
		"nombre_completo":          "José Gregorio Hernández",
		"cedula":                   "V-1",
		"ano_acreditacion":         "2018",
		"vencimiento_csm":          "31/12/2024",
		"primera_fecha_renovacion": "",
		"nro_gaceta2":              "",
		"ciudad":                   "Trujillo",
		"inactivo":                 "X",
		"activo_en_defensoria":     "no",
	})

	assert.Equal(t, "José", form.Get("nombres"))
	assert.Equal(t, "Gregorio Hernández", form.Get("apellidos"))
	assert.Equal(t, "2024-12-31", form.Get("vencimiento_csm"))
	assert.Equal(t, "Trujillo", form.Get("ciudad"))
	assert.Equal(t, "1", form.Get("inactivo"))

	for _, key := range []string{"activo_en_defensoria", "primera_fecha_renovacion", "nro_gaceta2", "edad"} {
		_, ok := form[key]
		assert.False(t, ok, key)
	}

	_, ok := form["telefono"]
	assert.True(t, ok, "required keys are always submitted")
	assert.Empty(t, form.Get("telefono"))
}

func TestRowFormKeepsExplicitNames(t *testing.T) {
	form := RowForm(map[string]string{
		"nombres":         "Ana",
		"apellidos":       "",
		"nombre_completo": "Ana Pérez",
	})
	assert.Equal(t, "Ana", form.Get("nombres"))
	assert.Equal(t, "Pérez", form.Get("apellidos"))
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-05-01":          "2024-05-01",
		"01/05/2024":          "2024-05-01",
		"01.05.2024":          "2024-05-01",
		"2024/05/01":          "2024-05-01",
		"05-01-24":            "2024-05-01",
		"2024-05-01 10:30:00": "2024-05-01",
		"mañana":              "mañana",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDate(in), in)
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "SI", "Sí", "x", "on", "Yes", " yes "} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "no", "false", "off"} {
		assert.False(t, isTruthy(v), v)
	}
}

func TestRecordsProcessorTracksEveryRow(t *testing.T) {
	creator := &fakeCreator{fail: map[string]error{"V-2": errors.New("duplicate key")}}
	tracker := &fakeTracker{}
	p := NewRecordsProcessor(creator, tracker, nil)

	ctx := context.WithValue(context.Background(), ports.CtxImportJobID, "job-1")
	err := p.ProcessBatch(ctx, []map[string]string{
		{"cedula": "V-1", "ano_acreditacion": "2020"},
		{"cedula": "V-2", "ano_acreditacion": "2020"},
		{"cedula": "V-3", "ano_acreditacion": "2021"},
	})
	require.NoError(t, err, "row failures do not abort the batch")

	require.Len(t, creator.forms, 2)
	require.Len(t, tracker.items, 3)

	assert.Equal(t, ports.ImportStatusDone, tracker.items[0].Status)
	assert.Equal(t, "1", tracker.items[0].ModelID)
	assert.Equal(t, "job-1", tracker.items[0].JobID)

	assert.Equal(t, ports.ImportStatusFailed, tracker.items[1].Status)
	assert.Equal(t, "duplicate key", tracker.items[1].Errors)
	assert.Empty(t, tracker.items[1].ModelID)
}

func TestRecordsProcessorStopsOnCancel(t *testing.T) {
	creator := &fakeCreator{}
	p := NewRecordsProcessor(creator, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.ProcessBatch(ctx, []map[string]string{{"cedula": "V-1"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, creator.forms)
}

func TestRegistry(t *testing.T) {
	reg := Registry(NewRecordsProcessor(&fakeCreator{}, nil, nil))
	assert.Contains(t, reg, "records")
	assert.Contains(t, reg, "noop")
}
