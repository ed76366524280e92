// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package resolver extracts a group code from a deep link, a decoded QR
// payload or a typed value and hands back a JoinRequest.
//
// All three sources share groupcode.Classify, so a code that is valid in
// one place is valid everywhere. A scan that produced nothing (NO_CODE) is
// reported differently from one that produced text in an unknown format
// (SCAN_FORMAT_UNRECOGNIZED).
package resolver
