package utils

import "strings"

// EscapeCsvValue makes a raw cell value safe to write into a CSV file.
//
// Values a spreadsheet would evaluate as a formula are prefixed with a single
// quote first. The result is then quoted when it contains a comma, newline or
// double quote, with embedded quotes doubled. Escaping an already escaped value
// quotes it again.
func EscapeCsvValue(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		v = "'" + v
	}
	if strings.ContainsAny(v, ",\n\"") {
		v = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}
