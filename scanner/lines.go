// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scanner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// LineCamera reads payloads one per line, the way keyboard-wedge QR
// readers type them. It can be opened once.
type LineCamera struct {
	mu     sync.Mutex
	r      io.Reader
	opened bool
}

func NewLineCamera(r io.Reader) *LineCamera {
	return &LineCamera{r: r}
}

var ErrCameraInUse = errors.New("camera already opened")

func (c *LineCamera) Open(context.Context) (Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opened {
		return nil, ErrCameraInUse
	}
	c.opened = true

	s := &lineStream{
		lines:  make(chan string),
		errc:   make(chan error, 1),
		closed: make(chan struct{}),
	}
	go s.pump(c.r)
	return s, nil
}

type lineStream struct {
	lines     chan string
	errc      chan error
	closed    chan struct{}
	closeOnce sync.Once
}

func (s *lineStream) pump(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case s.lines <- line:
		case <-s.closed:
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	s.errc <- err
}

func (s *lineStream) Next(ctx context.Context) (string, error) {
	select {
	case line := <-s.lines:
		return line, nil
	case err := <-s.errc:
		return "", err
	case <-s.closed:
		return "", io.ErrClosedPipe
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *lineStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
