// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache keeps recently fetched poll results close to the service.

Two layers are applied in order:

 1. redis, when configured: payloads are stored as JSON under
    "pollview:results:{poll_id}" with a short TTL (CACHE_TTL).
 2. singleflight: concurrent loads of the same poll share one upstream call.

A redis outage never fails a request. Errors are logged, counted in
pollview_cache_errors_total and the load continues upstream.

Invalidate is called after a vote is forwarded so the next view reflects it.
*/
package cache
