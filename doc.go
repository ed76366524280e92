// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Hesap Paylaş join gateway.

The gateway sits between the browser UI and the Hesap Paylaş backend. It
resolves deep links, scanned QR text and typed group codes, joins on behalf
of a browser session, parks the code while the user is signed out and
resumes the join once sign-in has been stored.

# Starting the Server

	BACKEND_URL=https://api.example.com/api SESSION_KEY=... DATABASE_URL=file:hesap.db go run .

Or with flags:

	go run . -p 3318 -b https://api.example.com/api -t memory

A .env file in the working directory is loaded first; variables already
set in the environment win.

# Configuration

Required settings:

  - BACKEND_URL (-b): Backend API base URL
  - SESSION_KEY (-session-key): Cookie signing key, at least 32 bytes
  - DATABASE_URL (-d): SQL URL or badger directory, unless STORE_TYPE=memory

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - STORE_TYPE (-t): sqlite, postgres, badger or memory (default: sqlite)
  - PUBLIC_URL (-public-url): Web app URL used in share links
  - QR_SCHEME (-qr-scheme): Scheme printed into QR codes (default: hesappaylas)
  - BACKEND_RPS (-backend-rps): Outbound request rate (default: 5)
  - ALLOWED_ORIGINS (-origins): Comma separated CORS origins
  - LOG_LEVEL=debug (-v): Debug logging

# Architecture

  - groupcode: Code formatting, normalization and classification
  - resolver: Deep link, QR and typed-code resolution
  - joinflow: Join orchestrator and pending-join resume
  - scanner: Camera scan loop
  - apiclient: Backend HTTP client
  - handlers, router, middleware: The HTTP surface
  - store, db: Client-side storage backends
  - auth: Stored sign-in state
  - bill: Bill split
  - cliparse: Configuration parsing

The operator CLI lives in cmd/hesapctl.
*/
package main
