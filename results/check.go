// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"fmt"
	"sort"

	"github.com/danielhkuo/pollview/models"
)

// IssueKind classifies a tally integrity problem
type IssueKind string

const (
	IssueUnknownOption   IssueKind = "unknown_option"
	IssueNegativeCount   IssueKind = "negative_count"
	IssueDuplicateOption IssueKind = "duplicate_option"
	IssueTotalMismatch   IssueKind = "total_mismatch"
	IssueCountOverflow   IssueKind = "count_overflow"
)

// Issue is a non-fatal problem found in an upstream payload. Aggregate already
// recovers from every issue; they exist to be logged and counted.
type Issue struct {
	Kind     IssueKind
	Option   string
	Count    int
	Reported int
	Computed int
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueUnknownOption:
		return fmt.Sprintf("%s: %q (%d votes ignored)", i.Kind, i.Option, i.Count)
	case IssueNegativeCount:
		return fmt.Sprintf("%s: %q has %d votes", i.Kind, i.Option, i.Count)
	case IssueDuplicateOption:
		return fmt.Sprintf("%s: %q appears more than once", i.Kind, i.Option)
	case IssueCountOverflow:
		return fmt.Sprintf("%s: %q has %d votes, capped at %d", i.Kind, i.Option, i.Count, i.Computed)
	case IssueTotalMismatch:
		return fmt.Sprintf("%s: reported %d, computed %d", i.Kind, i.Reported, i.Computed)
	default:
		return string(i.Kind)
	}
}

// Check inspects a tally against its poll and the server-reported total.
// Issues are returned in a stable order.
func Check(poll models.Poll, tally models.VoteTally, reportedTotal int) []Issue {
	var issues []Issue

	known := make(map[string]bool, len(poll.Options))
	for _, text := range poll.Options {
		if known[text] {
			issues = append(issues, Issue{Kind: IssueDuplicateOption, Option: text})
			continue
		}
		known[text] = true
	}

	keys := make([]string, 0, len(tally))
	for key := range tally {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		count := tally[key]
		if !known[key] {
			issues = append(issues, Issue{Kind: IssueUnknownOption, Option: key, Count: count})
			continue
		}
		if count < 0 {
			issues = append(issues, Issue{Kind: IssueNegativeCount, Option: key, Count: count})
		}
	}

	res, summary := Aggregate(poll, tally)
	counted := make(map[string]bool, len(res))
	for _, r := range res {
		if counted[r.Text] {
			continue
		}
		counted[r.Text] = true
		if count := tally[r.Text]; count > r.Votes {
			issues = append(issues, Issue{
				Kind:     IssueCountOverflow,
				Option:   r.Text,
				Count:    count,
				Computed: r.Votes,
			})
		}
	}

	if reportedTotal != summary.TotalVotes {
		issues = append(issues, Issue{
			Kind:     IssueTotalMismatch,
			Reported: reportedTotal,
			Computed: summary.TotalVotes,
		})
	}

	return issues
}
