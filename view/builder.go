// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package view

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/chart"
	"github.com/danielhkuo/pollview/models"
	"github.com/danielhkuo/pollview/results"
)

const createdLayout = "02.01.2006 15:04"

// Builder composes aggregated results, chart data and summary cards into a
// single renderable view
type Builder struct {
	adapter *chart.Adapter
	clock   clockwork.Clock
}

func NewBuilder(adapter *chart.Adapter, clock clockwork.Clock) *Builder {
	if adapter == nil {
		adapter = chart.NewAdapter(chart.DefaultSettings())
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Builder{adapter: adapter, clock: clock}
}

func (b *Builder) Settings() chart.Settings {
	return b.adapter.Settings()
}

// Build returns the view for an upstream payload
func (b *Builder) Build(res models.PollResults) models.ResultsView {
	v, _ := b.BuildWithIssues(res)
	return v
}

// BuildWithIssues returns the view together with the integrity issues found
// in the payload
func (b *Builder) BuildWithIssues(res models.PollResults) (models.ResultsView, []results.Issue) {
	rows, summary := results.Aggregate(res.Poll, res.Votes)
	issues := results.Check(res.Poll, res.Votes, res.Total)

	slices := b.adapter.ToSlices(rows)

	v := models.ResultsView{
		Poll:       res.Poll,
		Bars:       bars(rows),
		Slices:     slices,
		Legend:     b.adapter.Legend(slices),
		ShowChart:  summary.TotalVotes > 0,
		Summary:    summary,
		Cards:      b.cards(res.Poll, summary),
		RingTarget: results.RoundPercent(summary.Leading.Percentage),
		InputsHash: results.InputsHash(res),
	}

	if len(issues) > 0 {
		v.Issues = make([]string, len(issues))
		for i, issue := range issues {
			v.Issues[i] = issue.String()
		}
	}

	return v, issues
}

func bars(rows []models.Result) []models.Bar {
	out := make([]models.Bar, len(rows))
	for i, r := range rows {
		out[i] = models.Bar{
			Text:       r.Text,
			Votes:      r.Votes,
			Percentage: r.Percentage,
			Label:      BarLabel(r.Votes, r.Percentage),
		}
	}
	return out
}

// BarLabel formats the caption next to a result bar, e.g. "1,204 votes (84.3%)"
func BarLabel(votes int, percentage float64) string {
	return fmt.Sprintf("%s votes (%s)", humanize.Comma(int64(votes)), results.FormatPercent(percentage))
}

func (b *Builder) cards(poll models.Poll, s models.Summary) models.SummaryCards {
	c := models.SummaryCards{
		Leading:           s.Leading.Text,
		LeadingVotes:      humanize.Comma(int64(s.Leading.Votes)) + " votes",
		LeadingShare:      results.FormatPercent(s.Leading.Percentage),
		TotalVotes:        humanize.Comma(int64(s.TotalVotes)),
		OptionCount:       strconv.Itoa(s.OptionCount),
		AveragePercentage: results.FormatPercent(s.AveragePercentagePerOption),
	}

	if !poll.CreatedAt.IsZero() {
		c.Created = poll.CreatedAt.Format(createdLayout)
		c.CreatedAgo = humanize.RelTime(poll.CreatedAt, b.clock.Now(), "ago", "from now")
	}

	return c
}
