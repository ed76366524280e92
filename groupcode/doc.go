// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package groupcode formats, normalizes and validates group codes.

A canonical code is six digits ("123456"), displayed as "123-456".

# Formatter

	display, err := groupcode.ToDisplay("123456")    // "123-456"
	code, err := groupcode.ToCanonical("123-456")    // "123456"

# Normalizer

Normalize is the single cleanup path for typed text, scanned text and URL
values. It keeps digits and truncates to six:

	groupcode.Normalize("12a3-45 678") // "123456"

# Validator

Classify tells the accepted shapes apart:

	groupcode.Classify("123-456")          // Valid6Digit, 123456
	groupcode.Classify("Kırmızı-123-456")  // Valid9DigitLegacy, 123456
	groupcode.Classify("123-456-789")      // Valid9DigitLegacy, 456789
	groupcode.Classify("abcdef")           // Invalid

Legacy codes came from the earlier name + number scheme; QR images printed
with that scheme still circulate, so they are translated to their last two
numeric segments.
*/
package groupcode
