// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollview API.

# Route Registration

NewDeps wires the upstream client, results cache, snapshot store and rate
limiter from configuration. NewRouter registers every endpoint on an
http.ServeMux:

	deps, err := router.NewDeps(db, rdb, cfg, settings, clock)
	mux := router.NewRouter(deps)

# Endpoints

Operational:

	GET /health  - Liveness check
	GET /metrics - Prometheus metrics

Results (public):

	GET /polls/{id}/view      - Results view JSON
	GET /polls/{id}/chart.svg - Pie chart
	GET /polls/{id}/ring.svg  - Progress ring for the leading share
	GET /polls/{id}/trend     - Total votes over time
	GET /polls/{id}/live      - Websocket stream

Voting (public, rate limited per client IP):

	POST /polls/{id}/vote - Forward a vote to the poll API
*/
package router
