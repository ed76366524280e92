// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the key-value layer standing in for browser storage.

KV has three backends: Memory, SQL (SQLite or PostgreSQL through the kv
table) and Badger. Callers never see which one is in use.

Two scopes mirror the browser:

	local := store.LocalScope(kv, clientID)     // localStorage: token, user
	sess := store.SessionScope(kv, sessionID)   // sessionStorage: pending code

Take reads and deletes atomically; the pending-join slot depends on it.
*/
package store
