// Package privacy scrubs personal data out of captured screen text before
// it is kept anywhere readable. Screen dumps from the driver app routinely
// contain rider names, phone numbers and pickup addresses.
package privacy

import (
	"regexp"
	"strings"
)

var (
	// phoneRegex matches international and local phone number formats,
	// including the +49 and parenthesized area-code forms riders show up with.
	phoneRegex = regexp.MustCompile(`(\+?\d{1,3}[\s-]?)?(\(\d{2,5}\)[\s-]?)?\d{3,5}[\s-]?\d{3,8}\b`)

	// emailRegex matches email addresses.
	emailRegex = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.]+\b`)

	// plateRegex matches German license plates (e.g. B-XY 1234).
	plateRegex = regexp.MustCompile(`\b[A-ZÄÖÜ]{1,3}-[A-Z]{1,2}\s?\d{1,4}[EH]?\b`)
)

// RedactPhones replaces phone numbers with a placeholder.
func RedactPhones(text string) string {
	return phoneRegex.ReplaceAllString(text, "[tel]")
}

// RedactEmails replaces email addresses with a placeholder.
func RedactEmails(text string) string {
	return emailRegex.ReplaceAllString(text, "[email]")
}

// RedactPlates replaces license plates with a placeholder.
func RedactPlates(text string) string {
	return plateRegex.ReplaceAllString(text, "[plate]")
}

// Scrub performs full redaction on captured text. This is the function to
// use before storing any screen or notification content.
func Scrub(text string) string {
	text = RedactEmails(text)
	text = RedactPlates(text)
	text = RedactPhones(text)
	return strings.TrimSpace(text)
}
