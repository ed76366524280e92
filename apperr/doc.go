// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the tagged error used across the join flow.

Every failure a user can see carries a Code:

	MALFORMED_CODE            input does not look like a group code
	SCAN_FORMAT_UNRECOGNIZED  something was scanned, but not a code
	NO_CODE                   nothing to resolve (empty scan, missing param)
	JOIN_NOT_FOUND            backend has no group for the code
	JOIN_ALREADY_MEMBER       idempotent join, treated as success
	AUTH_REQUIRED             join deferred until sign in
	NETWORK_FAILURE           transport error, retry is safe
	CAMERA_UNAVAILABLE        fall back to manual entry
	JOIN_IN_PROGRESS          second join while one is in flight

Check with errors.Is against the sentinels:

	if errors.Is(err, apperr.ErrJoinNotFound) { ... }
*/
package apperr
