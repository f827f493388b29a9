// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results turns a poll definition and its vote tally into ordered
per-option results and summary statistics.

# Aggregation

	res, summary := results.Aggregate(poll, tally)

Aggregate is pure and deterministic. Callers re-invoke it whenever the poll or
tally changes; nothing is cached.

  - Results follow poll.Options order, not vote order
  - total is the sum of matched tally counts, never the server's total
  - percentage = votes/total*100, or 0 when total is 0
  - leading is the first option with the most votes
  - a poll without options yields the sentinel leading result "-"

# Integrity Checks

	issues := results.Check(poll, tally, payload.Total)

Check reports unknown options, negative counts, duplicate option texts and a
server total that differs from the recomputed one. None of these are fatal.

# Presentation Rounding

Percentages keep full precision. FormatPercent rounds to one decimal at
display time:

	results.FormatPercent(84.2857) // "84.3%"
*/
package results
