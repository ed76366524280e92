// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Hesap Paylaş join gateway.

# Route Registration

NewRouter wraps a Go 1.22 http.ServeMux in the session and CORS
middleware:

	h := router.NewRouter(deps, middleware.NewSessions(cfg.SessionKey, cfg.SecureCookies()))

# Endpoints

Health:

	GET /health

Joining:

	GET  /join?code=… or ?groupCode=… - Deep link
	POST /join/scan                   - Decoded QR text
	POST /join/manual                 - Typed code
	GET  /join/state                  - Orchestrator state and pending code

Codes:

	POST /codes/classify       - Validator diagnostics
	GET  /codes/{code}/share   - Share link and QR payload
	GET  /codes/{code}/qr.png  - QR image

Auth relay:

	POST /auth/signup|login|google - Sign in, then resume a pending join
	POST /auth/logout              - Clear the stored session
	GET  /me                       - Profile

Groups and bill:

	GET  /groups
	POST /groups
	GET  /groups/{id}
	POST /bill/split
*/
package router
