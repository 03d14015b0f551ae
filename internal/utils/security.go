package utils

import "strings"

// MaskPhoneNumber masks a phone number for logs and reports.
// Spaces, dashes and brackets are dropped first, then all but the
// first 3 and last 4 characters are hidden.
//
// Examples:
//   - "+7 999 123-45-67" -> "+79****4567"
//   - "+123456" -> "+12****3456"
//   - "+12345" -> "****"
func MaskPhoneNumber(phone string) string {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '\t':
			return -1
		}
		return r
	}, phone)

	if len(digits) <= 6 {
		return "****"
	}
	return digits[:3] + "****" + digits[len(digits)-4:]
}
