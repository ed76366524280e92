// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package bill splits a group's bill into per-person shares.
// All amounts are integer kuruş.
package bill
