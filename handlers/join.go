// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/joinflow"
	"github.com/metonline/hesap-paylas/middleware"
	"github.com/metonline/hesap-paylas/models"
	"github.com/metonline/hesap-paylas/resolver"
)

type JoinHandler struct {
	*Deps
}

func NewJoinHandler(d *Deps) *JoinHandler {
	return &JoinHandler{Deps: d}
}

// DeepLink handles GET /join?code=... or ?groupCode=...
func (h *JoinHandler) DeepLink(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, resolver.DeepLink, "?"+r.URL.RawQuery)
}

// Scan handles POST /join/scan
func (h *JoinHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	h.run(w, r, resolver.QRScan, req.Payload)
}

// Manual handles POST /join/manual
func (h *JoinHandler) Manual(w http.ResponseWriter, r *http.Request) {
	var req models.ManualJoinRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	h.run(w, r, resolver.ManualEntry, req.Code)
}

// State handles GET /join/state
func (h *JoinHandler) State(w http.ResponseWriter, r *http.Request) {
	o := h.orchestrator(r)
	resp := joinResponse(o.Last())

	p, err := o.Pending(r.Context())
	if err != nil {
		slog.Warn("failed to read pending join", "error", err)
	}
	if p != nil {
		resp.Pending = true
		if resp.Code == "" {
			resp.Code = p.Code.String()
			resp.CodeDisplay = p.Code.Display()
		}
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

func (h *JoinHandler) run(w http.ResponseWriter, r *http.Request, source resolver.Source, raw string) {
	o := h.orchestrator(r)

	var (
		res joinflow.Result
		err error
	)
	if r.URL.Query().Get("async") == "1" {
		res, err = o.SubmitAsync(r.Context(), h.Resolver, source, raw)
	} else {
		res, err = o.Submit(r.Context(), h.Resolver, source, raw)
	}

	if err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	status := http.StatusOK
	switch res.State {
	case joinflow.AwaitingAuth:
		status = apperr.CodeAuthRequired.HTTPStatus()
	case joinflow.Joining:
		status = http.StatusAccepted
	}
	middleware.JSONResponse(w, status, joinResponse(res))
}
