package sanitizer

import "strings"

// NormalizeMobile strips the separators people type into phone fields
// (spaces, dashes, dots, parentheses) so validation sees bare digits. It
// does not validate; a ten-digit check happens downstream.
func NormalizeMobile(mobile string) string {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return ""
	}

	var result strings.Builder
	for _, r := range mobile {
		switch r {
		case ' ', '-', '.', '(', ')':
			// separator, drop it
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}
