// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "FR"

// MatchDigits is how many trailing digits two numbers must share to be
// considered the same line. It absorbs country-code and trunk-prefix noise
// ("+33 6 12 34 56 78" vs "06 12 34 56 78").
const MatchDigits = 8

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Digits strips everything but ASCII digits.
func Digits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchKey returns the trailing MatchDigits digits of a number, or "" when
// the input has fewer digits than that.
func MatchKey(input string) string {
	d := Digits(NormalizeE164(input))
	if len(d) < MatchDigits {
		return ""
	}
	return d[len(d)-MatchDigits:]
}

// LooksLikePhone reports whether free text is plausibly a phone number:
// only digits, spaces, dots, dashes, parentheses and a leading plus, with
// at least MatchDigits digits.
func LooksLikePhone(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	digits := 0
	for i, r := range trimmed {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '.' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= MatchDigits
}
