package utils

import "strings"

// NormalizePhone reduces a phone number to international-dialing form: digits
// only, prefixed with "+".  Spaces, dashes and parentheses are stripped.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// ValidPhone reports whether a normalized phone number looks usable: a "+"
// followed by at least 9 digits.
func ValidPhone(phone string) bool {
	return strings.HasPrefix(phone, "+") && len(phone) >= 10
}
