// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-mckerracher/comp-sys-rankings/internal/dataset"
	"github.com/j-mckerracher/comp-sys-rankings/internal/metrics"
	"github.com/j-mckerracher/comp-sys-rankings/internal/ranking"
	"github.com/j-mckerracher/comp-sys-rankings/internal/service"
	"github.com/j-mckerracher/comp-sys-rankings/internal/snapshot"
	"github.com/j-mckerracher/comp-sys-rankings/internal/venues"
	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

const doc = `{
  "MIT": {
    "author_count": 1,
    "authors": {
      "A. Smith 1": {"area_paper_counts": {"programming_languages": {"PLDI": {"2020": {"score": 3.0, "year_paper_count": 1}}}}}
    }
  }
}`

type staticLoader struct{ res *dataset.Result }

func (l staticLoader) Load(context.Context) (*dataset.Result, error) { return l.res, nil }

type fakeSnapshots struct{}

func (fakeSnapshots) Write(_ context.Context, r types.Ranking, full bool) (snapshot.Run, error) {
	return snapshot.Run{ID: "r"}, nil
}

func (fakeSnapshots) Distribution(_ context.Context, inst, author string) (map[string]int, error) {
	if inst == "Mit" && author == "A. Smith" {
		return map[string]int{"programming_languages": 1, "databases": 0}, nil
	}
	return nil, snapshot.ErrNotFound
}

func newTestServer(t *testing.T, cfg types.ServerConfig) *Server {
	t.Helper()
	ds, _, err := dataset.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	svc := service.New(
		staticLoader{res: &dataset.Result{Dataset: ds, Origin: dataset.OriginLocal, Path: "/d.json"}},
		ranking.NewPipeline(venues.Default()),
		service.WithMetrics(metrics.New()),
		service.WithSnapshots(fakeSnapshots{}),
		service.WithClock(func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
	return New(svc, cfg, nil)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, types.ServerConfig{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(t, types.ServerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRankings(t *testing.T) {
	s := newTestServer(t, types.ServerConfig{})
	rec := get(t, s, "/api/rankings?venue=PLDI&year_low=2020&year_high=2020")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "local", rec.Header().Get("X-Dataset-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))

	var body map[string]struct {
		TotalScore   float64                   `json:"total_score"`
		AverageCount float64                   `json:"average_count"`
		Authors      map[string]map[string]any `json:"authors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	mit, ok := body["Mit"]
	require.True(t, ok)
	assert.InDelta(t, 3.0, mit.TotalScore, 1e-9)
	assert.InDelta(t, 4.0, mit.AverageCount, 1e-9)
	assert.EqualValues(t, 1, mit.Authors["A. Smith"]["paper_count"])
	assert.EqualValues(t, 3, mit.Authors["A. Smith"]["programming_languages"])
}

func TestRankingsCommaSeparatedAndAreas(t *testing.T) {
	s := newTestServer(t, types.ServerConfig{})
	for _, target := range []string{
		"/api/rankings?venue=PLDI,POPL",
		"/api/rankings?area=programming_languages",
		"/api/rankings",
	} {
		rec := get(t, s, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"Mit"`, target)
	}
}

func TestRankingsBadRequests(t *testing.T) {
	s := newTestServer(t, types.ServerConfig{})
	tests := []struct {
		name   string
		target string
	}{
		{"unknown venue", "/api/rankings?venue=Nature"},
		{"unknown area", "/api/rankings?area=astrology"},
		{"bad year", "/api/rankings?venue=PLDI&year_low=last"},
		{"bad high year", "/api/rankings?venue=PLDI&year_high=2020.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestRankingsEmptyYearRange(t *testing.T) {
	rec := get(t, newTestServer(t, types.ServerConfig{}), "/api/rankings?venue=PLDI&year_low=2025&year_high=2020")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", rec.Body.String())
}

func TestDistribution(t *testing.T) {
	s := newTestServer(t, types.ServerConfig{})

	rec := get(t, s, "/api/distribution?institution=Mit&author=A.%20Smith")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"programming_languages":1,"databases":0}`, rec.Body.String())

	rec = get(t, s, "/api/distribution?institution=Mit&author=Nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s, "/api/distribution?institution=Mit")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVenues(t *testing.T) {
	rec := get(t, newTestServer(t, types.ServerConfig{}), "/api/venues")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 13)
	assert.Equal(t, []string{"RTSS", "RTAS", "RTTSS"}, body["embedded_and_real_time"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, types.ServerConfig{RateLimit: 0.001, Burst: 2})
	assert.Equal(t, http.StatusOK, get(t, s, "/api/venues").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/venues").Code)

	rec := get(t, s, "/api/venues")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, types.ServerConfig{})
	get(t, s, "/api/venues")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `comp_sys_rankings_http_requests_total{method="GET",route="/api/venues",status="200"} 1`)
}
