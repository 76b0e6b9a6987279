package identity

import (
	"regexp"
	"strings"
	"unicode"
)

// RollNumber is an institution-issued student identifier in canonical form YYF-NNNN.
type RollNumber = string

// DefaultDomain is the institutional mail domain used when none is configured
const DefaultDomain = "cfd.nu.edu.pk"

var canonicalRollNo = regexp.MustCompile(`^\d{2}[A-Z]-\d{4}$`)

// Normalize removes dashes and whitespace, uppercases, and re-inserts the
// separator after the third character. Inputs shorter than four characters
// after cleaning are returned cleaned but unformatted.
func Normalize(input string) RollNumber {
	if input == "" {
		return ""
	}

	cleaned := strings.ToUpper(strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input))

	runes := []rune(cleaned)
	if len(runes) < 4 {
		return cleaned
	}

	return string(runes[:3]) + "-" + string(runes[3:])
}

// Valid reports whether rollNo is already in canonical form.
// It is a validation helper only; Normalize never relies on it.
func Valid(rollNo string) bool {
	return canonicalRollNo.MatchString(rollNo)
}

// Deriver maps roll numbers to institutional email addresses.
type Deriver struct {
	Domain string
}

// NewDeriver creates a deriver for the given mail domain
func NewDeriver(domain string) *Deriver {
	if domain == "" {
		domain = DefaultDomain
	}
	return &Deriver{Domain: domain}
}

// ToEmail converts a normalized roll number into its institutional email:
// 22F-3277 becomes f223277@<domain>. The input is assumed pre-normalized.
func (d *Deriver) ToEmail(rollNo RollNumber) string {
	cleaned := strings.Replace(rollNo, "-", "", 1)

	year := substr(cleaned, 0, 2)
	section := substr(cleaned, 2, 3)
	number := substr(cleaned, 3, len(cleaned))

	return strings.ToLower(section+year+number) + "@" + d.Domain
}

// AccountName returns the local part of the derived email, used as the
// account name at the identity provider.
func (d *Deriver) AccountName(rollNo RollNumber) string {
	email := d.ToEmail(rollNo)
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

func substr(s string, from, to int) string {
	if from > len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
