package utils

import "strings"

// SplitFullName splits "Nombres Apellidos" into its halves. With an odd word
// count the extra word goes to the surnames, so "Ana Pérez Gómez" yields
// ("Ana", "Pérez Gómez").
func SplitFullName(fullname string) (given, surnames string) {
	parts := strings.Fields(fullname)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}

	cut := len(parts) / 2
	return strings.Join(parts[:cut], " "), strings.Join(parts[cut:], " ")
}
