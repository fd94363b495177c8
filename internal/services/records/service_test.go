package records

import (
	"context"
	"io"
	"log"
	"net/url"
	"testing"

	"accreditations/internal/common"
	"accreditations/internal/metrics"
	recordstore "accreditations/internal/repository/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *recordstore.Memory) {
	t.Helper()
	store := recordstore.NewMemory()
	return NewService(store, metrics.New(), log.New(io.Discard, "", 0)), store
}

// requiredForm returns a submission carrying every required key.
func requiredForm(cedula string) url.Values {
	return url.Values{
		"nombres":                  {"Ana"},
		"apellidos":                {"Pérez"},
		"nro_acreditacion":         {"A-1"},
		"nacionalidad":             {"V"},
		"cedula":                   {cedula},
		"copia_ci_actualizada":     {""},
		"certificado_salud_mental": {""},
		"credencial":               {""},
		"constancia_trabajo":       {""},
		"sintesis_curricular":      {""},
		"telefono":                 {"0414-0000000"},
		"ano_acreditacion":         {"2020"},
		"nro_gaceta":               {"G-1"},
		"nro_decision":             {"D-1"},
		"direccion_defensoria":     {""},
		"motivo":                   {""},
		"lugar_trabajo":            {""},
	}
}

func TestCreateThenLookup(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, requiredForm("V-12345678"))
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, found, err := svc.FindByNationalID(ctx, "V-12345678")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, 2020, got.AccreditationYear)
	assert.Equal(t, "Ana", got.GivenNames)
	for _, r := range got.Renewals {
		assert.Nil(t, r.Date)
	}

	_, found, err = svc.FindByNationalID(ctx, "V-00000000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLookupIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, requiredForm("V-ABC"))
	require.NoError(t, err)

	_, found, err := svc.FindByNationalID(ctx, "v-abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateTwoDeleteFirst(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, requiredForm("V-1"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, requiredForm("V-2"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first.ID))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, found, err := svc.FindByNationalID(ctx, "V-1")
	require.NoError(t, err)
	assert.False(t, found)

	got, err := svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "V-2", got.NationalID)
}

func TestDeleteUnknownLeavesStoreUnchanged(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, requiredForm("V-1"))
	require.NoError(t, err)

	err = svc.Delete(ctx, 999)
	require.ErrorIs(t, err, common.ErrNotFound)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCreateDuplicateNationalID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, requiredForm("V-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, requiredForm("V-1"))
	require.ErrorIs(t, err, common.ErrDuplicateKey)
}

func TestCreateMalformedInput(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	form := requiredForm("V-1")
	form.Set("vencimiento_csm", "31/12/2024")
	_, err := svc.Create(ctx, form)
	require.ErrorIs(t, err, common.ErrParse)

	var pe *common.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "vencimiento_csm", pe.Field)

	form = requiredForm("V-1")
	form.Set("ano_acreditacion", "dos mil")
	_, err = svc.Create(ctx, form)
	require.ErrorIs(t, err, common.ErrParse)

	form = requiredForm("V-1")
	form.Del("telefono")
	_, err = svc.Create(ctx, form)
	require.ErrorIs(t, err, common.ErrMissingField)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdatePreservesAbsentOptionalFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	form := requiredForm("V-1")
	form.Set("vencimiento_csm", "2025-06-30")
	form.Set("primera_fecha_renovacion", "2022-01-15")
	form.Set("nro_gaceta2", "G-2")
	form.Set("ciudad", "Caracas")
	form.Set("edad", "34")
	form.Set("activo_en_defensoria", "on")
	rec, err := svc.Create(ctx, form)
	require.NoError(t, err)
	require.True(t, rec.ActiveAtDefenseOffice)

	upd := requiredForm("V-1")
	upd.Set("nombres", "María")
	upd.Set("segunda_fecha_renovacion", "")
	got, err := svc.Update(ctx, rec.ID, upd)
	require.NoError(t, err)

	assert.Equal(t, "María", got.GivenNames)
	require.NotNil(t, got.MentalHealthCertExpiry)
	assert.Equal(t, "2025-06-30", got.MentalHealthCertExpiry.Format(DateLayout))
	require.NotNil(t, got.Renewals[0].Date)
	assert.Equal(t, "2022-01-15", got.Renewals[0].Date.Format(DateLayout))
	assert.Nil(t, got.Renewals[1].Date)
	assert.Equal(t, "G-2", got.Renewals[0].GazetteNumber)
	assert.Equal(t, "Caracas", got.City)
	require.NotNil(t, got.Age)
	assert.Equal(t, 34, *got.Age)
	assert.False(t, got.ActiveAtDefenseOffice, "an unchecked flag is cleared")

	stored, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdateUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 42, requiredForm("V-1"))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateToTakenNationalID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, requiredForm("V-1"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, requiredForm("V-2"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, second.ID, requiredForm("V-1"))
	require.ErrorIs(t, err, common.ErrDuplicateKey)
}
