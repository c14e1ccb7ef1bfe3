package quality

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText collapses runs of whitespace and newlines into single spaces,
// trims the result, and applies NFC so visually identical content hashes the
// same regardless of the source's unicode composition.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFC.String(text)

	return strings.Join(strings.Fields(text), " ")
}
