// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/pollview/db"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/ring"
	"github.com/danielhkuo/pollview/upstream"
	"github.com/danielhkuo/pollview/view"
)

// MaxTrendLimit caps the number of trend points per request
const MaxTrendLimit = 1000

type ResultsHandler struct {
	loader    *ResultsLoader
	snapshots *db.SnapshotStore
}

func NewResultsHandler(loader *ResultsLoader, snapshots *db.SnapshotStore) *ResultsHandler {
	return &ResultsHandler{loader: loader, snapshots: snapshots}
}

// View handles GET /polls/{id}/view
func (h *ResultsHandler) View(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	v, err := h.loader.Load(r.Context(), pollID)
	if err != nil {
		writeLoadError(w, pollID, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, v)
}

// ChartSVG handles GET /polls/{id}/chart.svg
func (h *ResultsHandler) ChartSVG(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	v, err := h.loader.Load(r.Context(), pollID)
	if err != nil {
		writeLoadError(w, pollID, err)
		return
	}

	middleware.SVGResponse(w, http.StatusOK, view.RenderPie(v.Slices, h.loader.Settings()))
}

// RingSVG handles GET /polls/{id}/ring.svg
// Renders the settled ring for the leading option's share
func (h *ResultsHandler) RingSVG(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	v, err := h.loader.Load(r.Context(), pollID)
	if err != nil {
		writeLoadError(w, pollID, err)
		return
	}

	frame := ring.Settled(v.RingTarget, ring.DefaultGeometry())
	middleware.SVGResponse(w, http.StatusOK, view.RenderRing(frame))
}

// Trend handles GET /polls/{id}/trend?limit=n
// Returns stored total vote counts, oldest first
func (h *ResultsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	limit := db.DefaultTrendLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxTrendLimit {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	points, err := h.snapshots.Trend(r.Context(), pollID, limit)
	if err != nil {
		slog.Error("failed to query trend", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, points)
}

func writeLoadError(w http.ResponseWriter, pollID string, err error) {
	switch {
	case errors.Is(err, upstream.ErrPollNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, ErrNoResults), errors.Is(err, upstream.ErrUpstreamUnavailable):
		slog.Warn("results unavailable", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Upstream unavailable")
	default:
		slog.Error("failed to load results", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load results")
	}
}
