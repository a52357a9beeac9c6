package phone

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers that arrive without a country code.
// Lead lists are predominantly Indian mobile numbers, so bare 10-digit
// entries become +91 numbers.
const DefaultRegion = "IN"

// Clean strips spreadsheet artifacts from a raw lead phone cell: surrounding
// whitespace, a trailing ".0" left by numeric Excel columns, and every
// character that is not a digit or a leading plus.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")

	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize cleans a raw phone entry and formats it as E.164. Normalizing an
// already normalized number returns it unchanged.
func Normalize(raw string) (string, error) {
	cleaned := Clean(raw)
	if cleaned == "" || cleaned == "+" || cleaned == "+91" {
		return "", fmt.Errorf("phone number is empty")
	}

	parsed, err := phonenumbers.Parse(cleaned, DefaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number %q: %w", raw, err)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// IsValid reports whether a raw entry normalizes to a dialable number.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}
