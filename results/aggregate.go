// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"fmt"
	"math"

	"github.com/danielhkuo/pollview/models"
)

// SentinelText is the leading option text reported for a poll with no options
const SentinelText = "-"

// Aggregate computes per-option results and summary statistics for a poll.
// Results keep the poll's option order. Tally keys that match no option and
// negative counts are ignored; a tally count is attributed to the first option
// carrying its text. Counts that would overflow the total are capped so the
// total stays the sum of the reported votes.
func Aggregate(poll models.Poll, tally models.VoteTally) ([]models.Result, models.Summary) {
	results := make([]models.Result, len(poll.Options))
	seen := make(map[string]bool, len(poll.Options))

	total := 0
	for i, text := range poll.Options {
		results[i].Text = text
		if seen[text] {
			continue
		}
		seen[text] = true

		count := clampCount(tally[text], total)
		results[i].Votes = count
		total += count
	}

	for i := range results {
		results[i].Percentage = percentage(results[i].Votes, total)
	}

	return results, summarize(results, total)
}

// clampCount returns count limited to [0, math.MaxInt-total]
func clampCount(count, total int) int {
	if count < 0 {
		return 0
	}
	if count > math.MaxInt-total {
		return math.MaxInt - total
	}
	return count
}

func percentage(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(votes) / float64(total) * 100
}

func summarize(results []models.Result, total int) models.Summary {
	summary := models.Summary{
		Leading:     models.Result{Text: SentinelText},
		TotalVotes:  total,
		OptionCount: len(results),
	}
	if len(results) == 0 {
		return summary
	}

	// Strict comparison keeps the earliest option on ties
	leading := results[0]
	for _, r := range results {
		if r.Votes > leading.Votes {
			leading = r
		}
	}

	summary.Leading = leading
	summary.AveragePercentagePerOption = 100 / float64(len(results))
	return summary
}

// Round1 rounds a percentage to one decimal place
func Round1(p float64) float64 {
	return math.Round(p*10) / 10
}

// FormatPercent renders a percentage with one decimal, e.g. "84.3%"
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", Round1(p))
}

// RoundPercent returns the integer percentage shown by the progress ring
func RoundPercent(p float64) int {
	return int(math.Round(p))
}
