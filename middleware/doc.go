// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms). An incoming X-Request-ID is reused, otherwise one is
generated and echoed back. Websocket upgrades pass through the logger.

# Rate Limiting

Per-client token buckets keyed by client IP:

	limiter := middleware.NewRateLimiter(1, 5, clock)
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithRateLimit(limiter, handler))

Rejected requests get 429 with a Retry-After header. Buckets idle for ten
minutes are dropped.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type and X-Request-ID.

# Response Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.SVGResponse(w, http.StatusOK, svg)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (1 MiB limit). The raw bytes are returned so a
body can be forwarded as received:

	var req models.VoteRequest
	raw, err := middleware.ParseJSONBody(r, &req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	resp, err := client.SubmitVote(r.Context(), pollID, raw)

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
