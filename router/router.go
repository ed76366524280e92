// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/metonline/hesap-paylas/handlers"
	"github.com/metonline/hesap-paylas/middleware"
)

// NewRouter wires every gateway route. Sessions identify the browser; CORS
// admits the configured UI origins.
func NewRouter(d *handlers.Deps, sessions *middleware.Sessions) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	joinHandler := handlers.NewJoinHandler(d)
	codeHandler := handlers.NewCodeHandler(d)
	authHandler := handlers.NewAuthHandler(d)
	groupHandler := handlers.NewGroupHandler(d)
	billHandler := handlers.NewBillHandler(d)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Joining (deep link, QR scan, typed code)
	mux.HandleFunc("GET /join", middleware.WithLogging(joinHandler.DeepLink))
	mux.HandleFunc("POST /join/scan", middleware.WithLogging(joinHandler.Scan))
	mux.HandleFunc("POST /join/manual", middleware.WithLogging(joinHandler.Manual))
	mux.HandleFunc("GET /join/state", middleware.WithLogging(joinHandler.State))

	// Code utilities
	mux.HandleFunc("POST /codes/classify", middleware.WithLogging(codeHandler.Classify))
	mux.HandleFunc("GET /codes/{code}/share", middleware.WithLogging(codeHandler.Share))
	mux.HandleFunc("GET /codes/{code}/qr.png", middleware.WithLogging(codeHandler.QR))

	// Auth relay
	mux.HandleFunc("POST /auth/signup", middleware.WithLogging(authHandler.Signup))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /auth/google", middleware.WithLogging(authHandler.Google))
	mux.HandleFunc("POST /auth/logout", middleware.WithLogging(authHandler.Logout))
	mux.HandleFunc("GET /me", middleware.WithLogging(authHandler.Profile))

	// Groups
	mux.HandleFunc("GET /groups", middleware.WithLogging(groupHandler.List))
	mux.HandleFunc("POST /groups", middleware.WithLogging(groupHandler.Create))
	mux.HandleFunc("GET /groups/{id}", middleware.WithLogging(groupHandler.Get))

	// Bill
	mux.HandleFunc("POST /bill/split", middleware.WithLogging(billHandler.Split))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hesap-paylas gateway v1"))
	})

	return middleware.CORS(d.Config.AllowedOrigins)(sessions.Middleware(mux))
}
