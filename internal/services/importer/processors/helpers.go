package processors

import (
	"strings"
	"time"

	"accreditations/internal/services/records"
)

// truthy lists the spellings a sheet may use for a set flag.
var truthy = map[string]bool{
	"1": true, "true": true, "si": true, "sí": true, "x": true, "on": true, "yes": true,
}

func isTruthy(s string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(s))]
}

// normalizeDate rewrites the date spellings spreadsheets commonly produce
// into records.DateLayout. Unrecognised text is returned unchanged so the
// record service reports it as a parse error.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	layouts := []string{
		records.DateLayout,
		"02/01/2006",
		"02.01.2006",
		"2006/01/02",
		"01-02-06",
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format(records.DateLayout)
		}
	}
	return s
}

func rowID(row map[string]string) string {
	if v := row["cedula"]; v != "" {
		return v
	}
	return row["nombre_completo"]
}
