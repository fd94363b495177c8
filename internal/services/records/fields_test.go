package records

import (
	"net/url"
	"testing"
	"time"

	"accreditations/internal/common"
	"accreditations/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldKeysAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range Fields {
		require.False(t, seen[f.Key], "duplicate key %q", f.Key)
		seen[f.Key] = true
	}
	assert.Len(t, Fields, 21+3*models.RenewalCount+2)
}

func TestFieldStrategies(t *testing.T) {
	cases := map[string]Strategy{
		"cedula":                   Required,
		"ano_acreditacion":         Required,
		"motivo":                   Required,
		"vencimiento_csm":          OptionalPreserve,
		"cuarta_fecha_renovacion":  OptionalPreserve,
		"nro_gaceta5":              OptionalPreserve,
		"nro_decision2":            OptionalPreserve,
		"ciudad":                   OptionalPreserve,
		"edad":                     OptionalPreserve,
		"inactivo":                 Presence,
		"trabaja_actualmente":      Presence,
		"copia_ci_actualizada":     Required,
		"primera_fecha_renovacion": OptionalPreserve,
	}
	for key, want := range cases {
		f, ok := FieldByKey(key)
		require.True(t, ok, key)
		assert.Equal(t, want, f.Strategy, key)
	}

	_, ok := FieldByKey("nombre_completo")
	assert.False(t, ok)
}

func TestApplyCreateLeavesOptionalZero(t *testing.T) {
	var rec models.Record
	require.NoError(t, Apply(requiredForm("V-1"), &rec))

	assert.Equal(t, "V-1", rec.NationalID)
	assert.Equal(t, 2020, rec.AccreditationYear)
	assert.Nil(t, rec.MentalHealthCertExpiry)
	assert.Nil(t, rec.Age)
	assert.Empty(t, rec.City)
	assert.False(t, rec.Inactive)
}

func TestApplyRequiredAcceptsEmpty(t *testing.T) {
	form := requiredForm("V-1")
	form.Set("nombres", "")

	var rec models.Record
	require.NoError(t, Apply(form, &rec))
	assert.Empty(t, rec.GivenNames)
}

func TestApplyEmptyYearIsParseError(t *testing.T) {
	form := requiredForm("V-1")
	form.Set("ano_acreditacion", "")

	var rec models.Record
	err := Apply(form, &rec)
	require.ErrorIs(t, err, common.ErrParse)
}

func TestApplyMissingRequiredNamesField(t *testing.T) {
	form := requiredForm("V-1")
	form.Del("nro_decision")

	var rec models.Record
	err := Apply(form, &rec)

	var mf *common.MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "nro_decision", mf.Field)
}

func TestApplyPresenceFlagAnyValue(t *testing.T) {
	form := requiredForm("V-1")
	form.Set("inactivo", "")

	var rec models.Record
	require.NoError(t, Apply(form, &rec))
	assert.True(t, rec.Inactive)
}

func TestValuesRoundTrip(t *testing.T) {
	exp := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	age := 41
	rec := models.Record{
		GivenNames:             "Luis",
		Surnames:               "Rojas",
		NationalID:             "E-81234567",
		AccreditationYear:      2019,
		MentalHealthCertExpiry: &exp,
		CurrentlyEmployed:      true,
		Employer:               "Tribunal 3",
		City:                   "Maracay",
		Age:                    &age,
	}
	rec.Renewals[2] = models.Renewal{Date: &exp, GazetteNumber: "G-4", DecisionNumber: "D-4"}

	vals := Values(&rec)
	assert.Equal(t, "2024-03-09", vals.Get("vencimiento_csm"))
	assert.Equal(t, "1", vals.Get("trabaja_actualmente"))
	_, hasInactive := vals["inactivo"]
	assert.False(t, hasInactive)

	var back models.Record
	require.NoError(t, Apply(vals, &back))
	assert.Equal(t, rec, back)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2021-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	for _, bad := range []string{"2021-02-30", "28/02/2021", "2021-2-28", "x"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}

	var rec models.Record
	err = Apply(url.Values{"vencimiento_csm": {"2021-13-01"}}, &rec)
	assert.ErrorIs(t, err, common.ErrMissingField, "required keys are checked in form order")
}
