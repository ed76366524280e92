// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Hesap Paylaş join
gateway.

# Handler Types

Every handler embeds the shared *Deps (backend client, store, resolver,
join registry, validator, config):

  - JoinHandler: deep link, QR scan and typed-code joins
  - CodeHandler: classification, share links and QR images
  - AuthHandler: sign-in relay, session storage and pending-join resume
  - GroupHandler: group relays enriched with display codes
  - BillHandler: per-person bill split

	joinHandler := handlers.NewJoinHandler(deps)

# Browser Identity

Handlers read the middleware.Identity of the request. The ClientID keys
the durable sign-in state (hesapPaylas_token, hesapPaylas_user); the
SessionID keys the pending group code. An Authorization bearer header
overrides the stored token for API clients.

# Join Flow

	GET  /join?groupCode=123-456 → DeepLink
	POST /join/scan              → Scan
	POST /join/manual            → Manual
	GET  /join/state             → State

A signed-out join answers 202 with state awaiting_auth and stores the
code. Signing in through AuthHandler stores the token first and then
resumes the pending join; the outcome is returned as "resumed".
Append ?async=1 to return 202 joining right away and poll /join/state.
*/
package handlers
