package util

import "strings"

// SanitizePostgresText strips NUL bytes and invalid UTF-8 sequences
// from a string. Postgres text columns reject both, and extracted
// document text (PDF text layers especially) routinely contains them.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
