// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/pollview/db"
	"github.com/danielhkuo/pollview/models"
)

// SetupTestDB opens a private in-memory sqlite database with the schema applied
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// TestPoll returns a poll created at a fixed time
func TestPoll(id string, options ...string) models.Poll {
	return models.Poll{
		ID:        id,
		Title:     "Test Poll",
		Options:   options,
		CreatedAt: time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
	}
}

// FakeUpstream is an in-memory poll API. Votes increment the tally of the
// chosen options.
type FakeUpstream struct {
	Server *httptest.Server

	mu       sync.Mutex
	polls    map[string]models.PollResults
	failing  bool
	requests int
	votes    []models.VoteRequest
	lastBody []byte
}

// NewFakeUpstream starts a fake poll API that is closed with the test
func NewFakeUpstream(t *testing.T) *FakeUpstream {
	t.Helper()

	f := &FakeUpstream{polls: make(map[string]models.PollResults)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /polls/{id}/results", f.results)
	mux.HandleFunc("POST /polls/{id}/vote", f.vote)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)

	return f
}

func (f *FakeUpstream) URL() string {
	return f.Server.URL
}

// SetResults replaces the payload served for a poll
func (f *FakeUpstream) SetResults(res models.PollResults) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls[res.Poll.ID] = res
}

// SetFailing makes every request answer 503
func (f *FakeUpstream) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

// Requests returns how many requests reached the server
func (f *FakeUpstream) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// LastVoteBody returns the raw body of the most recent vote request
func (f *FakeUpstream) LastVoteBody() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.lastBody)
}

// Votes returns the vote requests accepted so far
func (f *FakeUpstream) Votes() []models.VoteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.VoteRequest(nil), f.votes...)
}

func (f *FakeUpstream) results(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests++
	res, ok := f.polls[r.PathValue("id")]
	failing := f.failing
	f.mu.Unlock()

	switch {
	case failing:
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "unavailable"})
	case !ok:
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "poll not found"})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (f *FakeUpstream) vote(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "unreadable body"})
		return
	}

	var req models.VoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid json"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	f.lastBody = body

	if f.failing {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "unavailable"})
		return
	}

	res, ok := f.polls[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "poll not found"})
		return
	}

	for _, i := range req.OptionIndices {
		if i < 0 || i >= len(res.Poll.Options) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid vote",
				Message: fmt.Sprintf("option %d does not exist", i),
			})
			return
		}
	}

	votes := make(models.VoteTally, len(res.Votes))
	for text, n := range res.Votes {
		votes[text] = n
	}
	res.Votes = votes
	for _, i := range req.OptionIndices {
		res.Votes[res.Poll.Options[i]]++
		res.Total++
	}
	f.polls[res.Poll.ID] = res
	f.votes = append(f.votes, req)

	writeJSON(w, http.StatusOK, models.VoteResponse{Success: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
