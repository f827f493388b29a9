// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p          Server port (default: 3318)
	-u          Upstream poll API base URL (required)
	-d          Database URL (required)
	-t          Database type: sqlite or postgres (default: sqlite)
	-r          Redis URL for the results cache (optional)
	-c          Chart settings YAML file (optional)
	-env-file   Env file loaded before reading the environment (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	UPSTREAM_URL  → -u
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	REDIS_URL     → -r
	CHART_CONFIG  → -c

Tuning is environment only:

	CACHE_TTL         Results cache lifetime (default: 2s)
	LIVE_INTERVAL     Live stream poll interval (default: 2s)
	UPSTREAM_TIMEOUT  Per-request upstream timeout (default: 5s)
	VOTE_RATE_LIMIT   Votes per second per client (default: 1)
	VOTE_RATE_BURST   Vote burst per client (default: 5)
	LOG_LEVEL         debug, info, warn or error (default: info)

CLI flags take precedence over environment variables. The env file never
overrides variables that are already set, and a missing env file is ignored.

# Validation

ParseFlags returns an error if:

  - UPSTREAM_URL or DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - a port, duration, rate or log level cannot be parsed
*/
package cliparse
