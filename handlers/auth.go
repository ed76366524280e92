// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/metonline/hesap-paylas/auth"
	"github.com/metonline/hesap-paylas/middleware"
	"github.com/metonline/hesap-paylas/models"
	"github.com/metonline/hesap-paylas/validation"
)

type AuthHandler struct {
	*Deps
}

func NewAuthHandler(d *Deps) *AuthHandler {
	return &AuthHandler{Deps: d}
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	req.Phone = validation.NormalizePhone(req.Phone)
	if err := h.Validate.Validate(req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	h.signIn(w, r, http.StatusCreated, func(ctx context.Context) (*models.AuthResponse, error) {
		return h.Backend.Signup(ctx, req)
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	if err := h.Validate.Validate(req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	h.signIn(w, r, http.StatusOK, func(ctx context.Context) (*models.AuthResponse, error) {
		return h.Backend.Login(ctx, req)
	})
}

// Google handles POST /auth/google
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	if err := h.Validate.Validate(req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	h.signIn(w, r, http.StatusOK, func(ctx context.Context) (*models.AuthResponse, error) {
		return h.Backend.LoginGoogle(ctx, req.Token)
	})
}

// signIn relays the backend call, stores the token and only then resumes a
// pending join for this browser session.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, status int, call func(context.Context) (*models.AuthResponse, error)) {
	ctx := r.Context()

	resp, err := call(ctx)
	if err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	if err := h.session(r).Save(ctx, resp.Token, resp.User); err != nil {
		slog.Error("failed to store session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store session")
		return
	}

	slog.Info("signed in",
		"user_id", resp.User.ID,
		"token", auth.Fingerprint(resp.Token, identity(r).ClientID),
	)

	out := models.SessionResponse{User: resp.User, LoggedIn: true}

	res, resumed, err := h.orchestrator(r).ResumeIfPending(ctx)
	if err != nil {
		slog.Warn("pending join did not complete", "error", err)
	}
	if resumed {
		jr := joinResponse(res)
		out.Resumed = &jr
	}

	middleware.JSONResponse(w, status, out)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session(r).Clear(r.Context()); err != nil {
		slog.Error("failed to clear session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{LoggedIn: false})
}

// Profile handles GET /me
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.requireToken(w, r)
	if !ok {
		return
	}

	user, err := h.Backend.Profile(r.Context(), tok)
	if err != nil {
		h.backendError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{User: *user, LoggedIn: true})
}
