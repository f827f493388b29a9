// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollview API.

# Handler Types

  - ResultsHandler: results view, chart and ring SVGs, vote trend
  - VotingHandler: vote forwarding
  - LiveHandler: websocket stream of results and ring frames

All results handlers read through a shared ResultsLoader:

	loader := handlers.NewResultsLoader(resultsCache, snapshots, builder, clock)
	resultsHandler := handlers.NewResultsHandler(loader, snapshots)

# Loading Results

ResultsLoader.Load fetches the payload through the cache, builds the view and
logs every integrity issue found in the tally. When the payload differs from
the newest stored snapshot a new snapshot is saved.

If the upstream API fails for any reason other than an unknown poll, the
newest snapshot is served instead with Stale set. Without one the request
fails with 502.

# Routes

	GET  /polls/{id}/view      → ResultsHandler.View
	GET  /polls/{id}/chart.svg → ResultsHandler.ChartSVG
	GET  /polls/{id}/ring.svg  → ResultsHandler.RingSVG
	GET  /polls/{id}/trend     → ResultsHandler.Trend (?limit=1..1000)
	POST /polls/{id}/vote      → VotingHandler.SubmitVote
	GET  /polls/{id}/live      → LiveHandler.Stream

# Error Mapping

	upstream.ErrPollNotFound        → 404
	upstream.ErrInvalidVote         → 400
	upstream.ErrUpstreamUnavailable → 502
	ErrNoResults                    → 502

# Live Stream

Each connection gets one progress ring animator and one writer goroutine.
The poll is reloaded every interval; a results message is sent when the
inputs hash changes and the ring is re-targeted to the new leading share.
Ring frames are sent as ring messages. The animator is disposed when the
client disconnects.

	{"type":"results","results":{...}}
	{"type":"ring","ring":{"displayed":75,"target":75,"state":"animating",...}}
*/
package handlers
