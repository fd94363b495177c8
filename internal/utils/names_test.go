package utils

import "testing"

func TestSplitFullName(t *testing.T) {
	cases := []struct {
		in, given, surnames string
	}{
		{"", "", ""},
		{"  Ana  ", "Ana", ""},
		{"Ana Pérez", "Ana", "Pérez"},
		{"Ana Pérez Gómez", "Ana", "Pérez Gómez"},
		{"Ana  María Pérez Gómez", "Ana María", "Pérez Gómez"},
		{"José Gregorio de la Cruz", "José Gregorio", "de la Cruz"},
	}
	for _, c := range cases {
		g, s := SplitFullName(c.in)
		if g != c.given || s != c.surnames {
			t.Fatalf("SplitFullName(%q) = (%q, %q), want (%q, %q)", c.in, g, s, c.given, c.surnames)
		}
	}
}
