// Package phone checks and formats the contact numbers typed into the lead
// and enquiry forms.
package phone

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers typed without a country prefix
const DefaultRegion = "IN"

// MinDigits is the minimum number of digits a contact number must carry
const MinDigits = 10

// ErrEmpty is returned for a blank number
var ErrEmpty = errors.New("phone number cannot be empty")

// Digits returns only the digits of s
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPlausible reports whether s has at least MinDigits digits and parses as a
// possible number in region. Nothing stricter is checked since the forms
// accept landlines and partial mobile prefixes.
func IsPlausible(s, region string) bool {
	if len(Digits(s)) < MinDigits {
		return false
	}
	if region == "" {
		region = DefaultRegion
	}
	parsed, err := phonenumbers.Parse(s, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(parsed)
}

// Normalize returns s in E.164 form
func Normalize(s, region string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrEmpty
	}
	if region == "" {
		region = DefaultRegion
	}
	parsed, err := phonenumbers.Parse(s, region)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}
	if !phonenumbers.IsPossibleNumber(parsed) {
		return "", fmt.Errorf("invalid phone number")
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// Display formats s for the lead tables: national format for numbers in
// region, international otherwise. Unparseable input is returned trimmed.
func Display(s, region string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if region == "" {
		region = DefaultRegion
	}
	parsed, err := phonenumbers.Parse(s, region)
	if err != nil || !phonenumbers.IsPossibleNumber(parsed) {
		return s
	}
	if phonenumbers.GetRegionCodeForNumber(parsed) == region {
		return phonenumbers.Format(parsed, phonenumbers.NATIONAL)
	}
	return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
}
