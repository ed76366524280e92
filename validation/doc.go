// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package validation checks decoded request bodies against their validate
// tags and converts failures into apperr VALIDATION errors keyed by JSON
// field name.
package validation
