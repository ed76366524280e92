// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/groupcode"
	"github.com/metonline/hesap-paylas/middleware"
	"github.com/metonline/hesap-paylas/models"
)

type GroupHandler struct {
	*Deps
}

func NewGroupHandler(d *Deps) *GroupHandler {
	return &GroupHandler{Deps: d}
}

// List handles GET /groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.requireToken(w, r)
	if !ok {
		return
	}

	groups, err := h.Backend.Groups(r.Context(), tok)
	if err != nil {
		h.backendError(w, r, err)
		return
	}

	out := models.GatewayGroupList{Groups: make([]models.GatewayGroupSummary, 0, len(groups))}
	for _, g := range groups {
		out.Groups = append(out.Groups, models.GatewayGroupSummary{
			GroupSummary: g,
			CodeDisplay:  groupcode.FormatLenient(g.RawCode()),
		})
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}

// Create handles POST /groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.requireToken(w, r)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	if err := h.Validate.Validate(req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	g, err := h.Backend.CreateGroup(r.Context(), tok, req)
	if err != nil {
		h.backendError(w, r, err)
		return
	}

	share := h.share(g.RawCode(), g.Name)
	if share.Code == "" {
		slog.Warn("backend returned a group without a usable code", "group_id", g.ID, "code", g.RawCode())
	}
	slog.Info("group created", "group_id", g.ID, "code", share.Code)

	middleware.JSONResponse(w, http.StatusCreated, models.GatewayGroup{
		Group: models.Group{GroupSummary: *g},
		Share: share,
	})
}

// Get handles GET /groups/{id}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		middleware.AppErrorResponse(w, apperr.New(apperr.CodeValidation, "group id must be a positive number"))
		return
	}

	tok, ok := h.requireToken(w, r)
	if !ok {
		return
	}

	g, err := h.Backend.GetGroup(r.Context(), tok, id)
	if err != nil {
		h.backendError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GatewayGroup{
		Group: *g,
		Share: h.share(g.RawCode(), g.Name),
	})
}
