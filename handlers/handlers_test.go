// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/metonline/hesap-paylas/apiclient"
	"github.com/metonline/hesap-paylas/auth"
	"github.com/metonline/hesap-paylas/middleware"
	"github.com/metonline/hesap-paylas/models"
	"github.com/metonline/hesap-paylas/resolver"
	"github.com/metonline/hesap-paylas/store"
	"github.com/metonline/hesap-paylas/testutil"
	"github.com/metonline/hesap-paylas/validation"
)

type testEnv struct {
	deps    *Deps
	backend *testutil.FakeBackend
	kv      *store.Memory
	id      middleware.Identity
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := testutil.NewFakeBackend(t)
	cfg := testutil.GetTestConfig(backend.URL())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := store.NewMemory()
	client := apiclient.New(cfg.BackendURL, logger, apiclient.WithRate(0, 0))

	d := &Deps{
		Backend:  client,
		Store:    kv,
		Resolver: resolver.New(cfg.QRScheme),
		Joins:    NewJoinRegistry(client, kv, logger),
		Validate: validation.New(),
		Config:   cfg,
	}
	t.Cleanup(d.Joins.Wait)

	return &testEnv{
		deps:    d,
		backend: backend,
		kv:      kv,
		id:      middleware.Identity{ClientID: "client-1", SessionID: "session-1"},
	}
}

// request builds a request carrying the env's browser identity.
func (e *testEnv) request(method, path string, body interface{}) *http.Request {
	req := testutil.MakeRequest(method, path, body, nil)
	return req.WithContext(middleware.WithIdentity(req.Context(), e.id))
}

// signIn stores a backend token for the env's browser.
func (e *testEnv) signIn(t *testing.T) string {
	t.Helper()
	tok := e.backend.IssueToken("ayse@example.com")
	sess := auth.NewSession(store.LocalScope(e.kv, e.id.ClientID))
	if err := sess.Save(context.Background(), tok, models.User{FirstName: "Ayşe"}); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	return tok
}

func (e *testEnv) pending(t *testing.T) string {
	t.Helper()
	v, err := store.SessionScope(e.kv, e.id.SessionID).Get(context.Background(), "pendingGroupCode")
	if err != nil {
		return ""
	}
	return v
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}
