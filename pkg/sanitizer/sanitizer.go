// Package sanitizer normalizes free-text input before validation so that
// equivalent values compare equal and stored documents stay tidy.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var rePhoneChars = regexp.MustCompile(`[^\d+]`)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// into single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeText handles longer free text such as a doctor bio or a booking's
// reason for visit.
func NormalizeText(text string) string {
	return TrimAndNormalize(text)
}

// NormalizePhone strips everything but digits and a leading plus sign.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	cleaned := rePhoneChars.ReplaceAllString(phone, "")
	if i := strings.LastIndex(cleaned, "+"); i > 0 {
		cleaned = strings.ReplaceAll(cleaned, "+", "")
	}
	return cleaned
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
