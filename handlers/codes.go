// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/skip2/go-qrcode"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/groupcode"
	"github.com/metonline/hesap-paylas/middleware"
	"github.com/metonline/hesap-paylas/models"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

type CodeHandler struct {
	*Deps
}

func NewCodeHandler(d *Deps) *CodeHandler {
	return &CodeHandler{Deps: d}
}

// Classify handles POST /codes/classify
func (h *CodeHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req models.ClassifyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	c := groupcode.Classify(req.Code)
	info := models.CodeInfo{
		Input:  req.Code,
		State:  c.State.String(),
		Legacy: c.Legacy(),
	}
	if c.OK() {
		info.Code = c.Code.String()
		info.Display = c.Code.Display()
	}
	middleware.JSONResponse(w, http.StatusOK, info)
}

// Share handles GET /codes/{code}/share
func (h *CodeHandler) Share(w http.ResponseWriter, r *http.Request) {
	code, err := groupcode.ToCanonical(r.PathValue("code"))
	if err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.share(code.String(), r.URL.Query().Get("name")))
}

// QR handles GET /codes/{code}/qr.png?name=&size=
func (h *CodeHandler) QR(w http.ResponseWriter, r *http.Request) {
	code, err := groupcode.ToCanonical(r.PathValue("code"))
	if err != nil {
		middleware.AppErrorResponse(w, err)
		return
	}

	size := defaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < minQRSize || n > maxQRSize {
			middleware.AppErrorResponse(w, apperr.New(apperr.CodeValidation,
				"size must be between "+strconv.Itoa(minQRSize)+" and "+strconv.Itoa(maxQRSize)))
			return
		}
		size = n
	}

	payload := h.Resolver.ScanPayload(code, r.URL.Query().Get("name"))
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		slog.Error("failed to render QR code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
