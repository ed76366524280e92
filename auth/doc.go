// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth keeps a client's signed-in state and a few token helpers.

# Session

A Session stores the backend bearer token and user profile in the client's
durable scope under hesapPaylas_token and hesapPaylas_user:

	s := auth.NewSession(store.LocalScope(kv, clientID))
	err := s.Save(ctx, resp.Token, resp.User)
	tok, err := s.Token(ctx) // "" when signed out

Save returns only after both values are written. The login handler relies on
this to resume a pending join immediately afterwards.

# Helpers

	secret, err := auth.GenerateSecret(32) // SESSION_KEY material
	fp := auth.Fingerprint(token, salt)    // log-safe token id
	tok := auth.BearerToken(r.Header.Get("Authorization"))
*/
package auth
