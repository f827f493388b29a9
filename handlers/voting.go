// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pollview/cache"
	"github.com/danielhkuo/pollview/metrics"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/models"
	"github.com/danielhkuo/pollview/upstream"
)

type VotingHandler struct {
	upstream *upstream.Client
	cache    *cache.ResultsCache
}

func NewVotingHandler(client *upstream.Client, resultsCache *cache.ResultsCache) *VotingHandler {
	return &VotingHandler{upstream: client, cache: resultsCache}
}

// SubmitVote handles POST /polls/{id}/vote
// Forwards the selection upstream; a successful vote drops the cached results
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	// Parse request
	var req models.VoteRequest
	raw, err := middleware.ParseJSONBody(r, &req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg := validateVote(req); msg != "" {
		metrics.VotesForwardedTotal.WithLabelValues("rejected").Inc()
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	resp, err := h.upstream.SubmitVote(r.Context(), pollID, raw)
	switch {
	case err == nil:
	case errors.Is(err, upstream.ErrInvalidVote):
		metrics.VotesForwardedTotal.WithLabelValues("rejected").Inc()
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, upstream.ErrPollNotFound):
		metrics.VotesForwardedTotal.WithLabelValues("not_found").Inc()
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		metrics.VotesForwardedTotal.WithLabelValues("unavailable").Inc()
		slog.Warn("vote not forwarded", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Upstream unavailable")
		return
	default:
		metrics.VotesForwardedTotal.WithLabelValues("error").Inc()
		slog.Error("failed to forward vote", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(r.Context(), pollID)
	}
	metrics.VotesForwardedTotal.WithLabelValues("accepted").Inc()

	slog.Info("vote forwarded",
		"poll_id", pollID,
		"options", len(req.OptionIndices),
	)

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// validateVote checks the request shape only; which options may be chosen is
// decided upstream
func validateVote(req models.VoteRequest) string {
	if len(req.OptionIndices) == 0 {
		return "option_indices is required"
	}
	return ""
}
