// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key holds no value.
var ErrNotFound = errors.New("store: key not found")

// KV is the small get/set/remove surface the join flow needs from client
// storage. Take is an atomic read-and-delete.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Take(ctx context.Context, key string) (string, error)
}

// Scope prefixes every key, so one backend can hold many clients.
type Scope struct {
	kv     KV
	prefix string
}

// Scoped returns a KV whose keys live under prefix.
func Scoped(kv KV, prefix string) *Scope {
	return &Scope{kv: kv, prefix: prefix}
}

func (s *Scope) Get(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *Scope) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s *Scope) Remove(ctx context.Context, key string) error {
	return s.kv.Remove(ctx, s.prefix+key)
}

func (s *Scope) Take(ctx context.Context, key string) (string, error) {
	return s.kv.Take(ctx, s.prefix+key)
}

// LocalScope is the durable per-client area (the browser's localStorage).
func LocalScope(kv KV, clientID string) *Scope {
	return Scoped(kv, "local:"+clientID+":")
}

// SessionScope is the per-browser-session area (sessionStorage).
func SessionScope(kv KV, sessionID string) *Scope {
	return Scoped(kv, "session:"+sessionID+":")
}
