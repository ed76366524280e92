// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package groupcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"

	"github.com/metonline/hesap-paylas/apperr"
)

// Length is the number of digits in a canonical group code.
const Length = 6

// Code is a canonical group code: exactly six ASCII digits.
type Code string

// Display returns the hyphenated form, e.g. "123-456".
func (c Code) Display() string {
	s := string(c)
	if len(s) != Length {
		return s
	}
	return s[:3] + "-" + s[3:]
}

func (c Code) String() string { return string(c) }

// Valid reports whether c satisfies the canonical invariant.
func (c Code) Valid() bool {
	return isDigits(string(c)) && len(c) == Length
}

// ToDisplay converts six digits to "ddd-ddd".
func ToDisplay(digits string) (string, error) {
	c := Code(digits)
	if !c.Valid() {
		return "", apperr.ErrMalformedCode
	}
	return c.Display(), nil
}

// ToCanonical strips everything but digits and requires exactly six of them.
func ToCanonical(display string) (Code, error) {
	d := digitsOnly(display)
	if len(d) != Length {
		return "", apperr.ErrMalformedCode
	}
	return Code(d), nil
}

// Normalize keeps only 0-9 and truncates to the first six digits.
// Extra digits are dropped the way the live input field drops them.
func Normalize(raw string) string {
	d := digitsOnly(raw)
	if len(d) > Length {
		d = d[:Length]
	}
	return d
}

// Mask is the as-you-type rendering of a code field: normalized digits,
// with the dash appearing once a fourth digit exists.
func Mask(raw string) string {
	d := Normalize(raw)
	if len(d) > 3 {
		return d[:3] + "-" + d[3:]
	}
	return d
}

// FormatLenient renders whatever is stored for a group in lists and
// detail views. Empty input renders as "---".
func FormatLenient(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "---"
	}
	d := Normalize(raw)
	if len(d) == Length {
		return Code(d).Display()
	}
	return d
}

// Generate draws a uniformly random code. A nil reader uses crypto/rand.
func Generate(r io.Reader) (Code, error) {
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate group code: %w", err)
	}
	return Code(fmt.Sprintf("%06d", n.Int64())), nil
}

// State is the Validator's verdict on a raw string.
type State int

const (
	Invalid State = iota
	Valid6Digit
	Valid9DigitLegacy
)

func (s State) String() string {
	switch s {
	case Valid6Digit:
		return "valid_6_digit"
	case Valid9DigitLegacy:
		return "valid_9_digit_legacy"
	default:
		return "invalid"
	}
}

// Classification is the outcome of Classify.
// Code is set for both valid states.
type Classification struct {
	State State
	Code  Code
}

// Legacy reports a recognized-but-outdated shape that was translated.
func (c Classification) Legacy() bool { return c.State == Valid9DigitLegacy }

// OK reports either valid state.
func (c Classification) OK() bool { return c.State != Invalid }

// Err returns nil for valid classifications and ErrMalformedCode otherwise.
func (c Classification) Err() error {
	if c.OK() {
		return nil
	}
	return apperr.ErrMalformedCode
}

var (
	legacyNumeric = regexp.MustCompile(`^\d{3}-\d{3}-\d{3}$`)
	// first segment must contain a non-digit to count as a name; the
	// 9-digit era added a third digit group
	legacyNamed = regexp.MustCompile(`^[^-]*[^-0-9][^-]*(-\d{3}){2,3}$`)
)

// Classify checks raw against the accepted shapes. Unlike Normalize it
// does not truncate: digit count is what tells the shapes apart.
//
// Legacy shapes are checked first, so "Mavi-123-456" is legacy even though
// it also carries exactly six digits. "Mavi-123-456-789" is legacy too and
// yields 456789, the same code the scanner reads from that payload.
func Classify(raw string) Classification {
	s := strings.TrimSpace(raw)

	if legacyNumeric.MatchString(s) || legacyNamed.MatchString(s) {
		parts := strings.Split(s, "-")
		n := len(parts)
		return Classification{
			State: Valid9DigitLegacy,
			Code:  Code(parts[n-2] + parts[n-1]),
		}
	}

	if d := digitsOnly(s); len(d) == Length {
		return Classification{State: Valid6Digit, Code: Code(d)}
	}

	return Classification{State: Invalid}
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
