// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollview server.

pollview reads live tallies from an external poll API and turns them into
renderable results: ordered result bars, a pie chart with placed labels and a
truncated legend, summary cards, and an animated progress ring for the leading
option. Votes are forwarded to the poll API unchanged.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	UPSTREAM_URL=http://polls:8080 DATABASE_URL=file:pollview.db go run .

Or with flags:

	go run . -p 3318 -u http://polls:8080 -d "postgres://..." -t postgres

A .env file in the working directory is read first (-env-file to change it).

# Configuration

Required settings:

  - UPSTREAM_URL (-u): Base URL of the poll API
  - DATABASE_URL (-d): Snapshot database (sqlite file or postgres URL)

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - REDIS_URL (-r): Shared results cache
  - CHART_CONFIG (-c): YAML file overriding palette and label settings
  - LOG_LEVEL: debug, info, warn or error (default: info)

# Architecture

  - results: Aggregation of a tally into ordered results and a summary
  - chart: Pie slices, label placement, legend truncation
  - ring: Progress ring animation state machine
  - view: Results view composition and SVG rendering
  - upstream: Poll API client behind a circuit breaker
  - cache: Redis and singleflight results cache
  - db: Snapshot history (sqlite or postgres)
  - handlers: HTTP request handlers and the live stream
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - metrics: Prometheus collectors
  - models: Payload and view types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
