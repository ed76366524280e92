// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package scanner drives a QR camera until it yields a usable group code.
//
// Pixel decoding is not done here: a Camera hands over decoded text and a
// Session feeds each payload to the resolver. Unusable payloads are
// reported and skipped. The first valid one ends the scan. The camera is
// released exactly once on every exit path.
package scanner
