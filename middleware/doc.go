// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Browser Identity

Sessions issues two signed cookies and puts an Identity in the context:

	hesap-client   persistent (30 days)  -> Identity.ClientID
	hesap-session  browser session       -> Identity.SessionID

	id, _ := middleware.IdentityFrom(r.Context())

ClientID keys the durable sign-in state, SessionID keys the pending join.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status, remote and duration_ms once the handler returns.

# CORS

	handler := middleware.CORS(cfg.AllowedOrigins)(mux)

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.AppErrorResponse(w, err) // status and code from *apperr.Error

ParseJSONBody requires application/json, caps bodies at 1 MiB and reports
bad JSON as VALIDATION.
*/
package middleware
