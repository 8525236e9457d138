// Package phone normalises customer phone numbers to the 10-digit form the
// store keys customers by.
package phone

import (
	"errors"
	"strings"
)

// Length is the number of digits in a stored phone number.
const Length = 10

var ErrInvalidPhone = errors.New("phone number must contain exactly 10 digits")

// Digits drops every non-digit character.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize strips formatting and accepts only exactly 10 digits.
// "555-123-4567" becomes "5551234567"; "555-123" is rejected.
func Normalize(raw string) (string, error) {
	d := Digits(raw)
	if len(d) != Length {
		return d, ErrInvalidPhone
	}
	return d, nil
}

// FromCaller turns a caller-ID number such as "+15551234567" into its last
// 10 digits. Shorter inputs are returned as digits only.
func FromCaller(raw string) string {
	d := Digits(raw)
	if len(d) > Length {
		return d[len(d)-Length:]
	}
	return d
}

// E164 formats a number for SMS delivery, assuming the North American
// country code when none is present.
func E164(raw string) string {
	d := Digits(raw)
	if !strings.HasPrefix(d, "1") {
		d = "1" + d
	}
	return "+" + d
}
