// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollview/cache"
	"github.com/danielhkuo/pollview/db"
	"github.com/danielhkuo/pollview/models"
	"github.com/danielhkuo/pollview/testutil"
	"github.com/danielhkuo/pollview/upstream"
	"github.com/danielhkuo/pollview/view"
)

type testEnv struct {
	upstream  *testutil.FakeUpstream
	client    *upstream.Client
	cache     *cache.ResultsCache
	snapshots *db.SnapshotStore
	loader    *ResultsLoader
	clock     *clockwork.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := testutil.NewFakeUpstream(t)
	client, err := upstream.NewClient(fake.URL(), time.Second)
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC))
	resultsCache := cache.New(nil, client, time.Second)
	snapshots := db.NewSnapshotStore(testutil.SetupTestDB(t), db.TypeSQLite)

	return &testEnv{
		upstream:  fake,
		client:    client,
		cache:     resultsCache,
		snapshots: snapshots,
		loader:    NewResultsLoader(resultsCache, snapshots, view.NewBuilder(nil, clock), clock),
		clock:     clock,
	}
}

// lunchPoll: 3 of 4 votes for Pizza
func lunchPoll() models.PollResults {
	return models.PollResults{
		Poll:  testutil.TestPoll("lunch", "Pizza", "Sushi", "Salad"),
		Votes: models.VoteTally{"Pizza": 3, "Sushi": 1},
		Total: 4,
	}
}

func get(handler http.HandlerFunc, path, pollID string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("GET", path, nil, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestView(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.SetResults(lunchPoll())
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.View, "/polls/lunch/view", "lunch")
	testutil.AssertStatus(t, w, http.StatusOK)

	var v models.ResultsView
	testutil.AssertJSON(t, w, &v)

	require.Len(t, v.Bars, 3)
	assert.Equal(t, "Pizza", v.Bars[0].Text)
	assert.Equal(t, "3 votes (75.0%)", v.Bars[0].Label)
	assert.Equal(t, "Salad", v.Bars[2].Text)
	assert.Equal(t, "Pizza", v.Summary.Leading.Text)
	assert.Equal(t, 4, v.Summary.TotalVotes)
	assert.Equal(t, 75, v.RingTarget)
	assert.True(t, v.ShowChart)
	assert.False(t, v.Stale)
	assert.Empty(t, v.Issues)
	assert.NotEmpty(t, v.InputsHash)
}

func TestView_NotFound(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.View, "/polls/missing/view", "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestView_MissingID(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.View, "/polls//view", "")
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestView_ReportsIntegrityIssues(t *testing.T) {
	env := newTestEnv(t)
	res := lunchPoll()
	res.Votes["Tacos"] = 2
	res.Total = 9
	env.upstream.SetResults(res)
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.View, "/polls/lunch/view", "lunch")
	testutil.AssertStatus(t, w, http.StatusOK)

	var v models.ResultsView
	testutil.AssertJSON(t, w, &v)

	// unknown options are ignored and the total is recomputed
	assert.Equal(t, 4, v.Summary.TotalVotes)
	assert.Len(t, v.Issues, 2)
}

func TestView_ServesStaleSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.SetResults(lunchPoll())
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.View, "/polls/lunch/view", "lunch")
	testutil.AssertStatus(t, w, http.StatusOK)

	env.upstream.SetFailing(true)

	w = get(handler.View, "/polls/lunch/view", "lunch")
	testutil.AssertStatus(t, w, http.StatusOK)

	var v models.ResultsView
	testutil.AssertJSON(t, w, &v)
	assert.True(t, v.Stale)
	assert.Equal(t, "Pizza", v.Summary.Leading.Text)
	assert.Equal(t, 4, v.Summary.TotalVotes)
}

func TestView_UnavailableWithoutSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.SetFailing(true)
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.View, "/polls/lunch/view", "lunch")
	testutil.AssertStatus(t, w, http.StatusBadGateway)
}

func TestLoader_StoresSnapshotOnChange(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.SetResults(lunchPoll())
	ctx := t.Context()

	_, err := env.loader.Load(ctx, "lunch")
	require.NoError(t, err)
	_, err = env.loader.Load(ctx, "lunch")
	require.NoError(t, err)

	points, err := env.snapshots.Trend(ctx, "lunch", 10)
	require.NoError(t, err)
	assert.Len(t, points, 1, "unchanged payload stored once")

	res := lunchPoll()
	res.Votes["Salad"] = 2
	res.Total = 6
	env.upstream.SetResults(res)
	env.clock.Advance(time.Minute)

	_, err = env.loader.Load(ctx, "lunch")
	require.NoError(t, err)

	points, err = env.snapshots.Trend(ctx, "lunch", 10)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 4, points[0].TotalVotes)
	assert.Equal(t, 6, points[1].TotalVotes)
}

func TestLoader_ResumesFromStoredHash(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.SetResults(lunchPoll())
	ctx := t.Context()

	_, err := env.loader.Load(ctx, "lunch")
	require.NoError(t, err)

	// a fresh loader sees the stored snapshot and does not duplicate it
	fresh := NewResultsLoader(env.cache, env.snapshots, view.NewBuilder(nil, env.clock), env.clock)
	_, err = fresh.Load(ctx, "lunch")
	require.NoError(t, err)

	points, err := env.snapshots.Trend(ctx, "lunch", 10)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestChartSVG(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.SetResults(lunchPoll())
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.ChartSVG, "/polls/lunch/chart.svg", "lunch")
	testutil.AssertStatus(t, w, http.StatusOK)

	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "<svg"))
	assert.Contains(t, body, "75%")
	assert.Contains(t, body, "Pizza")
}

func TestChartSVG_NotFound(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.ChartSVG, "/polls/missing/chart.svg", "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestRingSVG(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.SetResults(lunchPoll())
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.RingSVG, "/polls/lunch/ring.svg", "lunch")
	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	assert.Contains(t, body, "stroke-dashoffset")
	assert.Contains(t, body, ">75%<")
}

func TestTrend(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.SetResults(lunchPoll())
	handler := NewResultsHandler(env.loader, env.snapshots)

	_, err := env.loader.Load(t.Context(), "lunch")
	require.NoError(t, err)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedPoints int
	}{
		{"default limit", "/polls/lunch/trend", http.StatusOK, 1},
		{"explicit limit", "/polls/lunch/trend?limit=5", http.StatusOK, 1},
		{"zero limit", "/polls/lunch/trend?limit=0", http.StatusBadRequest, 0},
		{"limit too large", "/polls/lunch/trend?limit=5000", http.StatusBadRequest, 0},
		{"not a number", "/polls/lunch/trend?limit=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(handler.Trend, tt.path, "lunch")
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var points []models.TrendPoint
				testutil.AssertJSON(t, w, &points)
				assert.Len(t, points, tt.expectedPoints)
			}
		})
	}
}

func TestTrend_UnknownPollIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.loader, env.snapshots)

	w := get(handler.Trend, "/polls/none/trend", "none")
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.JSONEq(t, "[]", w.Body.String())
}
