// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metonline/hesap-paylas/apiclient"
	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/groupcode"
	"github.com/metonline/hesap-paylas/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, h http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL+"/api", quietLogger(), apiclient.WithRate(0, 0))
}

func TestJoinGroupSendsCanonicalCodeWithBearer(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody models.JoinGroupRequest

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": 7, "name": "Mavi Masa"}`)
	})

	g, err := c.JoinGroup(context.Background(), "tok-1", groupcode.Code("123456"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "/api/groups/join", gotPath)
	assert.Equal(t, "123456", gotBody.Code)
	assert.Equal(t, 7, g.ID)
	assert.Equal(t, "Mavi Masa", g.Name)
}

func TestJoinGroupErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   *apperr.Error
	}{
		{"not found status", http.StatusNotFound, `{"error": "Group not found"}`, apperr.ErrJoinNotFound},
		{"not found message", http.StatusBadRequest, `{"message": "Invalid group code"}`, apperr.ErrJoinNotFound},
		{"already member", http.StatusBadRequest, `{"message": "You are already a member"}`, apperr.ErrJoinAlreadyMember},
		{"unauthorized", http.StatusUnauthorized, `{"message": "Token expired"}`, apperr.ErrUnauthorized},
		{"server error", http.StatusInternalServerError, `oops`, apperr.ErrBackend},
		{"envelope failure", http.StatusOK, `{"success": false, "message": "Bu gruba zaten üyesiniz"}`, apperr.ErrJoinAlreadyMember},
		{"empty envelope", http.StatusOK, `{}`, apperr.ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.JoinGroup(context.Background(), "tok", groupcode.Code("123456"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestTransportFailureIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := apiclient.New(url, quietLogger(), apiclient.WithRate(0, 0))
	_, err := c.JoinGroup(context.Background(), "tok", groupcode.Code("123456"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNetworkFailure))
}

func TestCanceledContextIsNetworkFailure(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Profile(ctx, "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNetworkFailure))
}

func TestLoginWithoutBearer(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		_, _ = io.WriteString(w, `{"token": "jwt", "user": {"id": 1, "firstName": "Ayşe"}}`)
	})

	resp, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.Token)
	assert.Equal(t, "Ayşe", resp.User.FirstName)
}

func TestLoginWithoutTokenIsUnauthorized(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message": "Şifre hatalı"}`)
	})

	_, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	assert.Equal(t, "Şifre hatalı", apperr.MessageOf(err))
}

func TestGoogleLoginPostsToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body models.GoogleLoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "google-credential", body.Token)
		_, _ = io.WriteString(w, `{"token": "jwt"}`)
	})

	resp, err := c.LoginGoogle(context.Background(), "google-credential")
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.Token)
}

func TestGroupsAcceptsBothShapes(t *testing.T) {
	for name, body := range map[string]string{
		"array":   `[{"id": 1, "name": "A", "code": "123456"}]`,
		"wrapped": `{"groups": [{"id": 1, "name": "A", "code": "123456"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			groups, err := c.Groups(context.Background(), "tok")
			require.NoError(t, err)
			require.Len(t, groups, 1)
			assert.Equal(t, "123456", groups[0].RawCode())
		})
	}
}

func TestCreateGroupAndGetGroup(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /api/groups":
			_, _ = io.WriteString(w, `{"success": true, "group": {"id": 3, "name": "Tatil", "code": "654321", "code_formatted": "654-321"}}`)
		case "GET /api/groups/3":
			_, _ = io.WriteString(w, `{"id": 3, "name": "Tatil", "members": [{"id": 1, "first_name": "Ali", "last_name": "Kaya"}], "orders": []}`)
		default:
			http.NotFound(w, r)
		}
	})

	g, err := c.CreateGroup(context.Background(), "tok", models.CreateGroupRequest{Name: "Tatil", Category: models.CategoryTravel})
	require.NoError(t, err)
	assert.Equal(t, "654321", g.Code)

	detail, err := c.GetGroup(context.Background(), "tok", 3)
	require.NoError(t, err)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, "Ali", detail.Members[0].FirstName)

	_, err = c.GetGroup(context.Background(), "tok", 99)
	assert.True(t, errors.Is(err, apperr.ErrJoinNotFound))
}

func TestRateLimitSpacesRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL, quietLogger(), apiclient.WithRate(20, 1))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Profile(context.Background(), "tok")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
