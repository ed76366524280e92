// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/metonline/hesap-paylas/bill"
	"github.com/metonline/hesap-paylas/middleware"
)

type BillHandler struct {
	*Deps
}

func NewBillHandler(d *Deps) *BillHandler {
	return &BillHandler{Deps: d}
}

// Split handles POST /bill/split
func (h *BillHandler) Split(w http.ResponseWriter, r *http.Request) {
	var req bill.Request
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	if err := h.Validate.Validate(req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	b, err := bill.Split(req)
	if err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, b)
}
