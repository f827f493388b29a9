// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines upstream, derived, and view types for the service.

# Upstream Types

Shapes received from or sent to the poll API:

  - Poll: id, title, options, created_at
  - VoteTally: option text -> vote count
  - PollResults: poll, votes, total
  - VoteRequest: option_indices
  - VoteResponse: success, message

# Derived Types

Recomputed from PollResults on every request, never mutated in place:

  - Result: one option's votes and percentage
  - Summary: leading result, average percentage, totals
  - PieSlice: chart wedge with colour and label visibility
  - LegendEntry: truncated legend name and colour

# View Types

  - Bar: one result bar with its display label
  - SummaryCards: pre-formatted summary strings
  - ResultsView: everything a results page renders
  - RingFrame: one state of the progress ring
  - LiveMessage: envelope for the live websocket stream

# Snapshot Types

  - Snapshot: stored upstream payload with its inputs hash
  - TrendPoint: total votes at a capture time

# Constants

Live message types:

	MessageResults = "results"
	MessageRing    = "ring"
*/
package models
