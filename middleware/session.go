// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// Cookie names
const (
	ClientCookie  = "hesap-client"
	SessionCookie = "hesap-session"
)

const (
	idKey         = "id"
	clientMaxAge  = 30 * 24 * 60 * 60
	sessionMaxAge = 0
)

// Identity names the browser behind a request. ClientID outlives the
// browser session, like localStorage; SessionID ends with it, like
// sessionStorage.
type Identity struct {
	ClientID  string
	SessionID string
}

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFrom returns the identity set by Sessions.Middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Sessions issues the two signed identity cookies.
type Sessions struct {
	store  *sessions.CookieStore
	secure bool
}

// NewSessions creates cookie sessions signed with key.
func NewSessions(key []byte, secure bool) *Sessions {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, secure: secure}
}

// Middleware makes sure every request carries an Identity, issuing fresh
// cookies when they are missing or fail verification.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID, err := s.ensure(w, r, ClientCookie, clientMaxAge)
		if err != nil {
			slog.Error("failed to issue client cookie", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		sessionID, err := s.ensure(w, r, SessionCookie, sessionMaxAge)
		if err != nil {
			slog.Error("failed to issue session cookie", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, "session unavailable")
			return
		}

		ctx := WithIdentity(r.Context(), Identity{ClientID: clientID, SessionID: sessionID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Sessions) ensure(w http.ResponseWriter, r *http.Request, name string, maxAge int) (string, error) {
	sess, err := s.store.Get(r, name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			slog.Warn("cookie invalid, using fresh one", "cookie", name)
		} else {
			slog.Warn("cookie store error, using fresh one", "cookie", name, "error", err)
		}
	}

	if id, ok := sess.Values[idKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	sess.Values[idKey] = id
	opts := *s.store.Options
	opts.MaxAge = maxAge
	sess.Options = &opts
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}
