// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/metonline/hesap-paylas/apiclient"
	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/auth"
	"github.com/metonline/hesap-paylas/cliparse"
	"github.com/metonline/hesap-paylas/groupcode"
	"github.com/metonline/hesap-paylas/joinflow"
	"github.com/metonline/hesap-paylas/middleware"
	"github.com/metonline/hesap-paylas/models"
	"github.com/metonline/hesap-paylas/resolver"
	"github.com/metonline/hesap-paylas/store"
	"github.com/metonline/hesap-paylas/validation"
)

// Deps is what every handler shares.
type Deps struct {
	Backend  *apiclient.Client
	Store    store.KV
	Resolver *resolver.Resolver
	Joins    *joinflow.Registry
	Validate *validation.Validator
	Config   cliparse.Config
}

// NewJoinRegistry wires one orchestrator per browser session: the token
// comes from the client's durable scope, the pending slot from the
// session scope.
func NewJoinRegistry(backend *apiclient.Client, kv store.KV, logger *slog.Logger) *joinflow.Registry {
	return joinflow.NewRegistry(func(clientID, sessionID string) *joinflow.Orchestrator {
		return joinflow.New(
			backend,
			auth.NewSession(store.LocalScope(kv, clientID)),
			store.SessionScope(kv, sessionID),
			logger.With("session", sessionID),
		)
	})
}

func identity(r *http.Request) middleware.Identity {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		// Without the session middleware every request shares one slot.
		slog.Warn("request without identity", "path", r.URL.Path)
	}
	return id
}

func (d *Deps) session(r *http.Request) *auth.Session {
	return auth.NewSession(store.LocalScope(d.Store, identity(r).ClientID))
}

func (d *Deps) orchestrator(r *http.Request) *joinflow.Orchestrator {
	id := identity(r)
	return d.Joins.Get(id.ClientID, id.SessionID)
}

// token returns the caller's bearer token: the Authorization header for
// API clients, else the stored sign-in state.
func (d *Deps) token(ctx context.Context, r *http.Request) (string, error) {
	if tok := auth.BearerToken(r.Header.Get("Authorization")); tok != "" {
		return tok, nil
	}
	return d.session(r).Token(ctx)
}

// requireToken writes 401 and returns false when the caller is signed out.
func (d *Deps) requireToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	tok, err := d.token(r.Context(), r)
	if err != nil {
		slog.Error("failed to read token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "session unavailable")
		return "", false
	}
	if tok == "" {
		middleware.AppErrorResponse(w, apperr.New(apperr.CodeUnauthorized, "sign in first"))
		return "", false
	}
	return tok, true
}

// backendError writes err, signing the client out when the backend
// rejected its stored token.
func (d *Deps) backendError(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.CodeOf(err) == apperr.CodeUnauthorized && r.Header.Get("Authorization") == "" {
		if cerr := d.session(r).Clear(r.Context()); cerr != nil {
			slog.Error("failed to clear rejected session", "error", cerr)
		}
	}
	middleware.AppErrorResponse(w, err)
}

// share builds the share link and QR payload for a backend code.
func (d *Deps) share(raw, name string) models.ShareInfo {
	c := groupcode.Classify(raw)
	if !c.OK() {
		return models.ShareInfo{}
	}
	link, err := resolver.DeepLinkURL(d.Config.PublicURL, c.Code)
	if err != nil {
		slog.Warn("failed to build share link", "error", err)
	}
	return models.ShareInfo{
		Code:        c.Code.String(),
		CodeDisplay: c.Code.Display(),
		ShareURL:    link,
		QRPayload:   d.Resolver.ScanPayload(c.Code, name),
		QRImageURL:  "/codes/" + c.Code.String() + "/qr.png",
	}
}

// joinResponse renders an orchestrator result for the UI.
func joinResponse(res joinflow.Result) models.JoinResponse {
	resp := models.JoinResponse{
		State:     res.State.String(),
		Source:    sourceName(res.Request.Source),
		GroupName: res.GroupName(),
		Legacy:    res.Request.Legacy,
		Group:     res.Group,
	}
	if res.Request.Code.Valid() {
		resp.Code = res.Request.Code.String()
		resp.CodeDisplay = res.Request.Code.Display()
	}

	switch res.State {
	case joinflow.AwaitingAuth:
		resp.Pending = true
		resp.Message = apperr.ErrAuthRequired.Message
	case joinflow.Joining:
		resp.Message = "joining group"
	case joinflow.Joined:
		if res.AlreadyMember {
			resp.Message = apperr.ErrJoinAlreadyMember.Message
		} else if name := res.GroupName(); name != "" {
			resp.Message = "joined " + name
		} else {
			resp.Message = "joined group"
		}
	case joinflow.Failed:
		if res.Err != nil {
			resp.Message = apperr.MessageOf(res.Err)
		}
	}
	return resp
}

func sourceName(s resolver.Source) string {
	if s == 0 {
		return ""
	}
	return s.String()
}
