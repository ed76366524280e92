// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/resolver"
)

var ErrScanActive = errors.New("scan already active")

var errFound = errors.New("code found")

// Camera opens a stream of decoded QR payloads.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream yields one decoded payload per Next call. Close must unblock a
// pending Next.
type Stream interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// RejectFunc is told about payloads that did not resolve to a code.
type RejectFunc func(payload string, err error)

// Session runs at most one scan at a time over a camera.
type Session struct {
	cam    Camera
	res    *resolver.Resolver
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSession(cam Camera, res *resolver.Resolver, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{cam: cam, res: res, logger: logger}
}

// Active reports whether a scan is running.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Stop cancels the running scan, if any. The camera is released by Scan.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Scan opens the camera and reads payloads until one resolves to a group
// code. Payloads that do not resolve go to reject and scanning continues.
// The camera is released exactly once however Scan returns.
//
// Errors: ErrScanActive when a scan is already running,
// apperr.ErrCameraUnavailable when the camera cannot be opened or fails,
// and the context error after Stop or cancellation.
func (s *Session) Scan(ctx context.Context, reject RejectFunc) (resolver.JoinRequest, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return resolver.JoinRequest{}, ErrScanActive
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	stream, err := s.cam.Open(ctx)
	if err != nil {
		s.logger.Warn("camera unavailable", "error", err)
		return resolver.JoinRequest{}, apperr.ErrCameraUnavailable.WithCause(err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := stream.Close(); err != nil {
				s.logger.Warn("camera release failed", "error", err)
			}
		})
	}
	defer release()

	var (
		found resolver.JoinRequest
		hit   bool
	)
	frames := make(chan string)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)
		for {
			p, err := stream.Next(gctx)
			if err != nil {
				return err
			}
			select {
			case frames <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		for p := range frames {
			req, err := s.res.FromScan(p)
			if err != nil {
				s.logger.Debug("scan rejected", "error", err)
				if reject != nil {
					reject(p, err)
				}
				continue
			}
			found, hit = req, true
			return errFound
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		release()
		return nil
	})

	err = g.Wait()
	switch {
	case hit:
		s.logger.Info("scan found code", "code", found.Code.String(), "legacy", found.Legacy)
		return found, nil
	case ctx.Err() != nil:
		return resolver.JoinRequest{}, ctx.Err()
	default:
		return resolver.JoinRequest{}, apperr.ErrCameraUnavailable.WithCause(fmt.Errorf("camera stream: %w", err))
	}
}
