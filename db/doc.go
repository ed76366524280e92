// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the SQL database behind the client store and creates its
schema.

# Backends

	conn, err := db.Open(db.TypeSQLite, "file:hesap.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite uses modernc.org/sqlite (no cgo); PostgreSQL uses lib/pq.

# Schema

CreateSchema is idempotent:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

There is a single table:

  - kv: key TEXT PRIMARY KEY, value TEXT, updated_at TIMESTAMP

It backs both the durable client store (token, user) and the per-session
store (pending group code). See package store.
*/
package db
