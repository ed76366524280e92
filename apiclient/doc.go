// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient is the gateway's client for the Hesap Paylaş backend.

Every call waits on a token-bucket limiter before it is sent. Calls made on
behalf of a signed-in user carry the token as an OAuth2 bearer credential.
Failures come back as *apperr.Error:

	transport error          NETWORK_FAILURE
	401                      UNAUTHORIZED
	404 or "not found"       JOIN_NOT_FOUND
	"already" in the message JOIN_ALREADY_MEMBER
	anything else            BACKEND
*/
package apiclient
