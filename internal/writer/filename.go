package writer

import "strings"

// Labels for the non per-category files.
const (
	LabelCombined = "Combined"
	LabelIndex    = "Indicies"
)

// unsafeChars are stripped from per-category file names.
const unsafeChars = `\/:*?<>|`

// FileName returns "Narratives - {exchange} - {label}.txt".
func FileName(exchange, label string) string {
	return "Narratives - " + exchange + " - " + label + ".txt"
}

// SanitizeFileName removes characters that are invalid in file names on
// common filesystems.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return -1
		}
		return r
	}, name)
}
