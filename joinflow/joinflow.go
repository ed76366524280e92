// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package joinflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/groupcode"
	"github.com/metonline/hesap-paylas/models"
	"github.com/metonline/hesap-paylas/resolver"
	"github.com/metonline/hesap-paylas/store"
)

// PendingKey is the session-scoped slot holding a join deferred until sign-in.
const PendingKey = "pendingGroupCode"

// asyncTimeout bounds a background join started by SubmitAsync or
// AttemptJoinAsync.
const asyncTimeout = 30 * time.Second

// Joiner performs the backend join call.
type Joiner interface {
	JoinGroup(ctx context.Context, token string, code groupcode.Code) (*models.GroupSummary, error)
}

// TokenSource reports the current bearer token, "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type State int

const (
	Idle State = iota
	Resolving
	AwaitingAuth
	Joining
	Joined
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return models.StateIdle
	case Resolving:
		return models.StateResolving
	case AwaitingAuth:
		return models.StateAwaitingAuth
	case Joining:
		return models.StateJoining
	case Joined:
		return models.StateJoined
	case Failed:
		return models.StateFailed
	default:
		return "unknown"
	}
}

// Result is the outcome of one join attempt.
type Result struct {
	State         State
	Request       resolver.JoinRequest
	Group         *models.GroupSummary
	AlreadyMember bool
	// Err is the reason for Failed, or ErrAuthRequired for AwaitingAuth.
	Err error
}

// GroupName is the name to confirm the join with, if the backend sent one.
func (r Result) GroupName() string {
	if r.Group != nil && r.Group.Name != "" {
		return r.Group.Name
	}
	return r.Request.GroupName
}

// PendingJoin is what the pending slot holds.
type PendingJoin struct {
	Code      groupcode.Code `json:"code"`
	Source    string         `json:"source,omitempty"`
	GroupName string         `json:"group_name,omitempty"`
}

// Orchestrator runs joins for one browser session. At most one join is in
// flight at a time; a second attempt meanwhile fails with
// apperr.ErrJoinInProgress.
type Orchestrator struct {
	joiner  Joiner
	tokens  TokenSource
	pending store.KV
	logger  *slog.Logger

	sem *semaphore.Weighted
	wg  sync.WaitGroup

	mu   sync.Mutex
	last Result
}

// New creates an orchestrator. pending should be the session's
// store.SessionScope; tokens usually an *auth.Session.
func New(joiner Joiner, tokens TokenSource, pending store.KV, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		joiner:  joiner,
		tokens:  tokens,
		pending: pending,
		logger:  logger,
		sem:     semaphore.NewWeighted(1),
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last.State
}

// Last returns the most recent result.
func (o *Orchestrator) Last() Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Busy reports whether a join is in flight.
func (o *Orchestrator) Busy() bool {
	if o.sem.TryAcquire(1) {
		o.sem.Release(1)
		return false
	}
	return true
}

// Pending returns the deferred join without consuming it.
func (o *Orchestrator) Pending(ctx context.Context) (*PendingJoin, error) {
	raw, err := o.pending.Get(ctx, PendingKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending join: %w", err)
	}
	return decodePending(raw)
}

func (o *Orchestrator) set(r Result) {
	o.mu.Lock()
	o.last = r
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State, req resolver.JoinRequest) {
	o.set(Result{State: s, Request: req})
}

// Submit resolves raw input from source and attempts the join.
// Resolution failures leave the orchestrator in Failed with an
// *apperr.Error describing the input problem.
func (o *Orchestrator) Submit(ctx context.Context, res *resolver.Resolver, source resolver.Source, raw string) (Result, error) {
	if !o.sem.TryAcquire(1) {
		return o.Last(), apperr.ErrJoinInProgress
	}
	defer o.sem.Release(1)

	req, r, err := o.resolve(res, source, raw)
	if err != nil {
		return r, err
	}
	return o.attempt(ctx, req)
}

// SubmitAsync is Submit without waiting for the backend. Resolution
// failures are reported and recorded as in Submit.
func (o *Orchestrator) SubmitAsync(ctx context.Context, res *resolver.Resolver, source resolver.Source, raw string) (Result, error) {
	if !o.sem.TryAcquire(1) {
		return o.Last(), apperr.ErrJoinInProgress
	}

	req, r, err := o.resolve(res, source, raw)
	if err != nil {
		o.sem.Release(1)
		return r, err
	}
	return o.dispatch(ctx, req)
}

// resolve runs with the semaphore held.
func (o *Orchestrator) resolve(res *resolver.Resolver, source resolver.Source, raw string) (resolver.JoinRequest, Result, error) {
	o.setState(Resolving, resolver.JoinRequest{Source: source})
	req, err := res.Resolve(source, raw)
	if err != nil {
		r := Result{State: Failed, Request: resolver.JoinRequest{Source: source}, Err: err}
		o.set(r)
		o.logger.Info("join input rejected",
			"source", source.String(),
			"code", string(apperr.CodeOf(err)),
		)
		return req, r, err
	}
	return req, Result{}, nil
}

// AttemptJoin joins req's group now, or defers it until sign-in when no
// token is stored. A deferral returns State AwaitingAuth and a nil error.
func (o *Orchestrator) AttemptJoin(ctx context.Context, req resolver.JoinRequest) (Result, error) {
	if !o.sem.TryAcquire(1) {
		return o.Last(), apperr.ErrJoinInProgress
	}
	defer o.sem.Release(1)
	return o.attempt(ctx, req)
}

// AttemptJoinAsync is AttemptJoin without waiting for the backend. The
// returned result is the state right after dispatch (Joining, or
// AwaitingAuth when signed out). Poll State or Last for the outcome.
func (o *Orchestrator) AttemptJoinAsync(ctx context.Context, req resolver.JoinRequest) (Result, error) {
	if !o.sem.TryAcquire(1) {
		return o.Last(), apperr.ErrJoinInProgress
	}
	return o.dispatch(ctx, req)
}

// dispatch takes over the held semaphore and releases it once the join
// is done.
func (o *Orchestrator) dispatch(ctx context.Context, req resolver.JoinRequest) (Result, error) {
	token, err := o.tokens.Token(ctx)
	if err != nil || token == "" {
		defer o.sem.Release(1)
		return o.attempt(ctx, req)
	}

	o.setState(Joining, req)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.sem.Release(1)
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), asyncTimeout)
		defer cancel()
		_, _ = o.join(bg, token, req)
	}()
	return Result{State: Joining, Request: req}, nil
}

// ResumeIfPending consumes the pending join, if any, and attempts it.
// Call it only after the token has been stored. ok is false when nothing
// was pending. A failed resume puts the pending join back for a retry.
func (o *Orchestrator) ResumeIfPending(ctx context.Context) (r Result, ok bool, err error) {
	if !o.sem.TryAcquire(1) {
		return o.Last(), false, apperr.ErrJoinInProgress
	}
	defer o.sem.Release(1)

	raw, err := o.pending.Take(ctx, PendingKey)
	if errors.Is(err, store.ErrNotFound) {
		return o.Last(), false, nil
	}
	if err != nil {
		return o.Last(), false, fmt.Errorf("take pending join: %w", err)
	}

	p, err := decodePending(raw)
	if err != nil {
		o.logger.Warn("discarding unreadable pending join", "error", err)
		return o.Last(), false, nil
	}

	req := p.request()
	o.logger.Info("resuming pending join",
		"code", req.Code.String(),
		"source", req.Source.String(),
	)

	r, err = o.attempt(ctx, req)
	if r.State == Failed {
		if perr := o.restorePending(ctx, *p); perr != nil {
			o.logger.Error("failed to restore pending join", "error", perr)
		}
	}
	return r, true, err
}

// Wait blocks until background joins have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// attempt runs with the semaphore held.
func (o *Orchestrator) attempt(ctx context.Context, req resolver.JoinRequest) (Result, error) {
	token, err := o.tokens.Token(ctx)
	if err != nil {
		r := Result{State: Failed, Request: req, Err: err}
		o.set(r)
		return r, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return o.deferJoin(ctx, req)
	}

	o.setState(Joining, req)
	return o.join(ctx, token, req)
}

func (o *Orchestrator) join(ctx context.Context, token string, req resolver.JoinRequest) (Result, error) {
	group, err := o.joiner.JoinGroup(ctx, token, req.Code)

	switch {
	case err == nil, errors.Is(err, apperr.ErrJoinAlreadyMember):
		r := Result{
			State:         Joined,
			Request:       req,
			Group:         group,
			AlreadyMember: err != nil,
		}
		if rerr := o.pending.Remove(ctx, PendingKey); rerr != nil {
			o.logger.Warn("failed to clear pending join", "error", rerr)
		}
		o.set(r)
		o.logger.Info("joined group",
			"code", req.Code.String(),
			"source", req.Source.String(),
			"already_member", r.AlreadyMember,
		)
		return r, nil

	case errors.Is(err, apperr.ErrUnauthorized):
		// The stored token was rejected; treat it like no token at all.
		o.logger.Info("token rejected during join, deferring", "code", req.Code.String())
		return o.deferJoin(ctx, req)

	default:
		r := Result{State: Failed, Request: req, Err: err}
		o.set(r)
		o.logger.Warn("join failed",
			"code", req.Code.String(),
			"source", req.Source.String(),
			"error", err,
		)
		return r, err
	}
}

// deferJoin stores req as the pending join, replacing any earlier one.
func (o *Orchestrator) deferJoin(ctx context.Context, req resolver.JoinRequest) (Result, error) {
	p := pendingFrom(req)
	if err := o.writePending(ctx, p); err != nil {
		r := Result{State: Failed, Request: req, Err: err}
		o.set(r)
		return r, err
	}
	r := Result{State: AwaitingAuth, Request: req, Err: apperr.ErrAuthRequired}
	o.set(r)
	o.logger.Info("join deferred until sign-in",
		"code", req.Code.String(),
		"source", req.Source.String(),
	)
	return r, nil
}

func (o *Orchestrator) writePending(ctx context.Context, p PendingJoin) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending join: %w", err)
	}
	if err := o.pending.Set(ctx, PendingKey, string(raw)); err != nil {
		return fmt.Errorf("store pending join: %w", err)
	}
	return nil
}

// restorePending puts p back unless a newer join was deferred meanwhile.
func (o *Orchestrator) restorePending(ctx context.Context, p PendingJoin) error {
	_, err := o.pending.Get(ctx, PendingKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return o.writePending(ctx, p)
}

func pendingFrom(req resolver.JoinRequest) PendingJoin {
	return PendingJoin{Code: req.Code, Source: req.Source.String(), GroupName: req.GroupName}
}

func (p PendingJoin) request() resolver.JoinRequest {
	src, err := resolver.ParseSource(p.Source)
	if err != nil {
		src = resolver.DeepLink
	}
	return resolver.JoinRequest{Code: p.Code, Source: src, GroupName: p.GroupName}
}

// decodePending accepts the JSON form and the bare code string older web
// clients wrote.
func decodePending(raw string) (*PendingJoin, error) {
	var p PendingJoin
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		p = PendingJoin{Code: groupcode.Code(raw)}
	}
	c := groupcode.Classify(string(p.Code))
	if !c.OK() {
		return nil, fmt.Errorf("pending code %q: %w", raw, apperr.ErrMalformedCode)
	}
	p.Code = c.Code
	return &p, nil
}
