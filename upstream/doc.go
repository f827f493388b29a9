// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package upstream is the HTTP client for the poll API that owns polls and votes.

	GET  {base}/polls/{id}/results   -> {"poll": {...}, "votes": {...}, "total": n}
	POST {base}/polls/{id}/vote      <- {"option_indices": [0, 2]}

Every call passes through a circuit breaker. Not-found and rejected votes are
normal answers and do not trip it; transport errors and 5xx responses do.
While the breaker is open calls fail fast with ErrUpstreamUnavailable.

# Errors

	ErrPollNotFound         404 from upstream
	ErrInvalidVote          400 or 422 on vote submission
	ErrUpstreamUnavailable  transport error, 5xx, bad body or open breaker
*/
package upstream
