// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

Load an optional .env file, then parse flags:

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p            Server port
	-b            Backend API base URL
	-t            Store type (sqlite, postgres, badger, memory)
	-d            Database URL or badger directory
	-session-key  Cookie signing key
	-public-url   Share link base
	-qr-scheme    QR payload scheme
	-backend-rps  Outbound request rate
	-origins      CORS origins
	-v            Debug logging

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	BACKEND_URL     → -b
	STORE_TYPE      → -t
	DATABASE_URL    → -d
	SESSION_KEY     → -session-key
	PUBLIC_URL      → -public-url
	QR_SCHEME       → -qr-scheme
	BACKEND_RPS     → -backend-rps
	ALLOWED_ORIGINS → -origins
	LOG_LEVEL=debug → -v

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error when BACKEND_URL or SESSION_KEY is missing,
when SESSION_KEY decodes to fewer than 32 bytes, and when DATABASE_URL is
missing for any store other than memory.
*/
package cliparse
