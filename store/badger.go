// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Badger is an embedded KV backend. An empty path opens an in-memory
// instance.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger
}

func NewBadger(path string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("badger store opened", "path", path)
	}
	return &Badger{db: db, logger: logger}, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func (b *Badger) Get(_ context.Context, key string) (string, error) {
	var v []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		v, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return string(v), nil
}

func (b *Badger) Set(_ context.Context, key, value string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (b *Badger) Remove(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Take reads and deletes inside one transaction; a concurrent Take
// conflicts and gets ErrNotFound on retry.
func (b *Badger) Take(ctx context.Context, key string) (string, error) {
	for {
		var v []byte
		err := b.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err != nil {
				return err
			}
			if v, err = item.ValueCopy(nil); err != nil {
				return err
			}
			return txn.Delete([]byte(key))
		})
		switch {
		case err == nil:
			return string(v), nil
		case errors.Is(err, badger.ErrKeyNotFound):
			return "", ErrNotFound
		case errors.Is(err, badger.ErrConflict):
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		default:
			return "", fmt.Errorf("failed to take %q: %w", key, err)
		}
	}
}
