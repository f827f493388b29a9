// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics declares the service's prometheus collectors. All collectors
// register with the default registry at init and are exposed on /metrics.
package metrics
