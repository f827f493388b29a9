// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Message types sent over the live results stream
const (
	MessageResults = "results"
	MessageRing    = "ring"
)

// Upstream types

type Poll struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Options   []string   `json:"options"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// option text -> vote count; missing options count as zero
type VoteTally map[string]int

type PollResults struct {
	Poll  Poll      `json:"poll"`
	Votes VoteTally `json:"votes"`
	Total int       `json:"total"`
}

type VoteRequest struct {
	OptionIndices []int `json:"option_indices"`
}

type VoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Derived types

type Result struct {
	Text       string  `json:"text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type Summary struct {
	Leading                    Result  `json:"leading"`
	AveragePercentagePerOption float64 `json:"average_percentage_per_option"`
	TotalVotes                 int     `json:"total_votes"`
	OptionCount                int     `json:"option_count"`
}

type PieSlice struct {
	Name         string  `json:"name"`
	Value        int     `json:"value"`
	Percentage   float64 `json:"percentage"`
	Color        string  `json:"color"`
	LabelVisible bool    `json:"label_visible"`
}

type LegendEntry struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Color    string `json:"color"`
	Value    int    `json:"value"`
}

// View types

type Bar struct {
	Text       string  `json:"text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
	Label      string  `json:"label"`
}

type SummaryCards struct {
	Leading           string `json:"leading"`
	LeadingVotes      string `json:"leading_votes"`
	LeadingShare      string `json:"leading_share"`
	TotalVotes        string `json:"total_votes"`
	OptionCount       string `json:"option_count"`
	AveragePercentage string `json:"average_percentage"`
	Created           string `json:"created"`
	CreatedAgo        string `json:"created_ago"`
}

type ResultsView struct {
	Poll       Poll          `json:"poll"`
	Bars       []Bar         `json:"bars"`
	Slices     []PieSlice    `json:"slices"`
	Legend     []LegendEntry `json:"legend"`
	ShowChart  bool          `json:"show_chart"`
	Summary    Summary       `json:"summary"`
	Cards      SummaryCards  `json:"cards"`
	RingTarget int           `json:"ring_target"`
	Issues     []string      `json:"issues,omitempty"`
	Stale      bool          `json:"stale"`
	InputsHash string        `json:"inputs_hash"`
}

// Snapshot types

type Snapshot struct {
	ID            string      `json:"id"`
	PollID        string      `json:"poll_id"`
	CapturedAt    time.Time   `json:"captured_at"`
	TotalVotes    int         `json:"total_votes"`
	ReportedTotal int         `json:"reported_total"`
	InputsHash    string      `json:"inputs_hash"` // Hash of the upstream payload for change detection
	Payload       PollResults `json:"payload"`
}

type TrendPoint struct {
	CapturedAt time.Time `json:"captured_at"`
	TotalVotes int       `json:"total_votes"`
}

// Live stream

type LiveMessage struct {
	Type    string       `json:"type"`
	Results *ResultsView `json:"results,omitempty"`
	Ring    *RingFrame   `json:"ring,omitempty"`
}

type RingFrame struct {
	Displayed     float64 `json:"displayed"`
	Target        float64 `json:"target"`
	State         string  `json:"state"`
	Circumference float64 `json:"circumference"`
	StrokeOffset  float64 `json:"stroke_offset"`
	Text          string  `json:"text"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
