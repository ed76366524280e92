// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/metonline/hesap-paylas/models"
	"github.com/metonline/hesap-paylas/store"
)

// Durable storage keys, shared with the web client.
const (
	KeyToken = "hesapPaylas_token"
	KeyUser  = "hesapPaylas_user"
)

var ErrNotSignedIn = errors.New("not signed in")

// Session is the signed-in state of one client, kept in its durable scope.
type Session struct {
	kv store.KV
}

// NewSession binds a session to kv, normally a store.LocalScope.
func NewSession(kv store.KV) *Session {
	return &Session{kv: kv}
}

// Save persists token and user. It returns only after both writes are
// durable, so a caller may resume a pending join right after it.
// The token is written last: a stored token always has a user next to it.
func (s *Session) Save(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return errors.New("save session: empty token")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, or "" when signed out.
func (s *Session) Token(ctx context.Context) (string, error) {
	tok, err := s.kv.Get(ctx, KeyToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return tok, nil
}

// User returns the stored profile, or ErrNotSignedIn.
func (s *Session) User(ctx context.Context) (*models.User, error) {
	raw, err := s.kv.Get(ctx, KeyUser)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// Clear signs the client out.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, KeyToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := s.kv.Remove(ctx, KeyUser); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}

// GenerateSecret returns byteLen random bytes, hex encoded.
// hesapctl uses it to mint SESSION_KEY values.
func GenerateSecret(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Fingerprint identifies a bearer token in logs without revealing it.
// Returns the first 8 bytes (16 hex chars) of HMAC-SHA256.
func Fingerprint(token, salt string) string {
	if token == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// BearerToken extracts the token from an "Authorization: Bearer x" value.
func BearerToken(header string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// SessionKey decodes a SESSION_KEY setting. Hex input is decoded; any other
// value is taken as raw bytes, then base64-url if it parses as such.
func SessionKey(s string) []byte {
	if b, err := hex.DecodeString(s); err == nil && len(b) > 0 {
		return b
	}
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil && len(b) >= 32 {
		return b
	}
	return []byte(s)
}
