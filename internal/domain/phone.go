package domain

import "strings"

// CountryCallingCode is prefixed to stored phone numbers
const CountryCallingCode = "55"

// NormalizePhone strips every non-digit and prefixes the country calling code
// unless the digits already start with it. An input without digits yields "".
func NormalizePhone(raw string) string {
	digits := OnlyDigits(raw)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, CountryCallingCode) {
		return digits
	}
	return CountryCallingCode + digits
}

// OnlyDigits returns the decimal digits of s in order
func OnlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
