package records

import (
	"net/url"
	"strconv"
	"time"

	"accreditations/internal/common"
	"accreditations/internal/models"
)

// DateLayout is the only accepted date text: YYYY-MM-DD.
const DateLayout = "2006-01-02"

// Strategy decides how a submitted key is read into a record.
type Strategy int

const (
	// Required keys must be present in the submission; an absent key fails
	// with common.ErrMissingField. An empty value is accepted as-is.
	Required Strategy = iota
	// OptionalPreserve keys are read only when present, so an absent key
	// leaves the record's current value untouched. Empty dates and numbers
	// are ignored the same way.
	OptionalPreserve
	// Presence keys are booleans: any submitted value means true.
	Presence
)

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindFlag
	KindDocument
)

// Field binds one form key to a record attribute.
type Field struct {
	Key      string
	Label    string
	Strategy Strategy
	Kind     Kind

	get  func(*models.Record) string
	set  func(*models.Record, string) error
	mark func(*models.Record, bool)
}

// Value renders the record attribute the way it is submitted in a form.
func (f Field) Value(r *models.Record) string { return f.get(r) }

// Fields lists every record attribute in form order.
var Fields = buildFields()

// FieldByKey returns the field bound to key.
func FieldByKey(key string) (Field, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Apply copies a submission into rec following each field's strategy.
// On a fresh record it implements create; on a stored one, update.
func Apply(form url.Values, rec *models.Record) error {
	for _, f := range Fields {
		vals, ok := form[f.Key]
		v := ""
		if len(vals) > 0 {
			v = vals[0]
		}

		switch f.Strategy {
		case Presence:
			f.mark(rec, ok)
		case Required:
			if !ok {
				return &common.MissingFieldError{Field: f.Key}
			}
			if err := f.set(rec, v); err != nil {
				return err
			}
		case OptionalPreserve:
			if !ok {
				continue
			}
			if err := f.set(rec, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Values is the inverse of Apply: every field rendered as a submission.
// Unset flags are omitted so that Apply(Values(r)) reproduces r.
func Values(rec *models.Record) url.Values {
	out := make(url.Values, len(Fields))
	for _, f := range Fields {
		v := f.get(rec)
		if f.Strategy == Presence && v == "" {
			continue
		}
		out.Set(f.Key, v)
	}
	return out
}

func text(key, label string, s Strategy, at func(*models.Record) *string) Field {
	return Field{
		Key: key, Label: label, Strategy: s, Kind: KindText,
		get: func(r *models.Record) string { return *at(r) },
		set: func(r *models.Record, v string) error {
			*at(r) = v
			return nil
		},
	}
}

func document(key, label string, at func(*models.Record) *string) Field {
	f := text(key, label, Required, at)
	f.Kind = KindDocument
	return f
}

func year(key, label string, at func(*models.Record) *int) Field {
	return Field{
		Key: key, Label: label, Strategy: Required, Kind: KindNumber,
		get: func(r *models.Record) string { return strconv.Itoa(*at(r)) },
		set: func(r *models.Record, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return &common.ParseError{Field: key, Value: v, Err: err}
			}
			*at(r) = n
			return nil
		},
	}
}

func optionalInt(key, label string, at func(*models.Record) **int) Field {
	return Field{
		Key: key, Label: label, Strategy: OptionalPreserve, Kind: KindNumber,
		get: func(r *models.Record) string {
			if p := *at(r); p != nil {
				return strconv.Itoa(*p)
			}
			return ""
		},
		set: func(r *models.Record, v string) error {
			if v == "" {
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return &common.ParseError{Field: key, Value: v, Err: err}
			}
			*at(r) = &n
			return nil
		},
	}
}

func date(key, label string, at func(*models.Record) **time.Time) Field {
	return Field{
		Key: key, Label: label, Strategy: OptionalPreserve, Kind: KindDate,
		get: func(r *models.Record) string {
			if p := *at(r); p != nil {
				return p.Format(DateLayout)
			}
			return ""
		},
		set: func(r *models.Record, v string) error {
			if v == "" {
				return nil
			}
			t, err := ParseDate(v)
			if err != nil {
				return &common.ParseError{Field: key, Value: v, Err: err}
			}
			*at(r) = &t
			return nil
		},
	}
}

func flag(key, label string, at func(*models.Record) *bool) Field {
	return Field{
		Key: key, Label: label, Strategy: Presence, Kind: KindFlag,
		get: func(r *models.Record) string {
			if *at(r) {
				return "1"
			}
			return ""
		},
		mark: func(r *models.Record, on bool) { *at(r) = on },
	}
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

var (
	renewalDateKeys = [models.RenewalCount]string{
		"primera_fecha_renovacion",
		"segunda_fecha_renovacion",
		"tercera_fecha_renovacion",
		"cuarta_fecha_renovacion",
	}
	renewalOrdinals = [models.RenewalCount]string{"Primera", "Segunda", "Tercera", "Cuarta"}
)

func buildFields() []Field {
	fs := []Field{
		text("nombres", "Nombres", Required, func(r *models.Record) *string { return &r.GivenNames }),
		text("apellidos", "Apellidos", Required, func(r *models.Record) *string { return &r.Surnames }),
		text("nro_acreditacion", "Nro. de acreditación", Required, func(r *models.Record) *string { return &r.AccreditationNumber }),
		text("nacionalidad", "Nacionalidad", Required, func(r *models.Record) *string { return &r.Nationality }),
		text("cedula", "Cédula", Required, func(r *models.Record) *string { return &r.NationalID }),
		document("copia_ci_actualizada", "Copia de C.I. actualizada", func(r *models.Record) *string { return &r.UpdatedIDCopy }),
		document("certificado_salud_mental", "Certificado de salud mental", func(r *models.Record) *string { return &r.MentalHealthCert }),
		date("vencimiento_csm", "Vencimiento del certificado", func(r *models.Record) **time.Time { return &r.MentalHealthCertExpiry }),
		document("credencial", "Credencial", func(r *models.Record) *string { return &r.Credential }),
		document("constancia_trabajo", "Constancia de trabajo", func(r *models.Record) *string { return &r.WorkProof }),
		document("sintesis_curricular", "Síntesis curricular", func(r *models.Record) *string { return &r.Resume }),
		text("telefono", "Teléfono", Required, func(r *models.Record) *string { return &r.Phone }),
		year("ano_acreditacion", "Año de acreditación", func(r *models.Record) *int { return &r.AccreditationYear }),
		text("nro_gaceta", "Nro. de gaceta", Required, func(r *models.Record) *string { return &r.GazetteNumber }),
		text("nro_decision", "Nro. de decisión", Required, func(r *models.Record) *string { return &r.DecisionNumber }),
		flag("activo_en_defensoria", "Activo en la defensoría", func(r *models.Record) *bool { return &r.ActiveAtDefenseOffice }),
		text("direccion_defensoria", "Dirección de la defensoría", Required, func(r *models.Record) *string { return &r.DefenseOfficeAddress }),
		flag("inactivo", "Inactivo", func(r *models.Record) *bool { return &r.Inactive }),
		text("motivo", "Motivo", Required, func(r *models.Record) *string { return &r.InactiveReason }),
		flag("trabaja_actualmente", "Trabaja actualmente", func(r *models.Record) *bool { return &r.CurrentlyEmployed }),
		text("lugar_trabajo", "Lugar de trabajo", Required, func(r *models.Record) *string { return &r.Employer }),
	}

	for i := range models.RenewalCount {
		n := strconv.Itoa(i + 2)
		fs = append(fs,
			date(renewalDateKeys[i], renewalOrdinals[i]+" fecha de renovación",
				func(r *models.Record) **time.Time { return &r.Renewals[i].Date }),
			text("nro_gaceta"+n, "Nro. de gaceta "+n, OptionalPreserve,
				func(r *models.Record) *string { return &r.Renewals[i].GazetteNumber }),
			text("nro_decision"+n, "Nro. de decisión "+n, OptionalPreserve,
				func(r *models.Record) *string { return &r.Renewals[i].DecisionNumber }),
		)
	}

	return append(fs,
		text("ciudad", "Ciudad", OptionalPreserve, func(r *models.Record) *string { return &r.City }),
		optionalInt("edad", "Edad", func(r *models.Record) **int { return &r.Age }),
	)
}
