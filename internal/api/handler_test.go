package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelson-ong-97/trending-repos/internal/models"
	"github.com/nelson-ong-97/trending-repos/internal/trending"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTrendingService struct {
	lastQuery trending.TrendingQuery
	response  *models.TrendingResponse
	repo      *models.Repository
	err       error
}

func (f *fakeTrendingService) GetTrending(ctx context.Context, query trending.TrendingQuery) (*models.TrendingResponse, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeTrendingService) GetByFullName(ctx context.Context, fullName string) (*models.Repository, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.repo, nil
}

type fakeSyncService struct {
	result *models.SyncResult
	err    error
	calls  int
}

func (f *fakeSyncService) SyncAll(ctx context.Context) (*models.SyncResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func emptyTrendingResponse() *models.TrendingResponse {
	return &models.TrendingResponse{
		Repos:       []models.RepositoryWithTrendingScore{},
		Pagination:  models.PaginationMeta{CurrentPage: 1, PageSize: 9},
		LastUpdated: "2026-08-31T12:00:00Z",
	}
}

func serve(h *Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	router := SetupRouter(h)
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetTrendingValidation(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		wantErr string
	}{
		{"missing timeRange", "/api/v1/repos/trending", "timeRange"},
		{"unknown timeRange", "/api/v1/repos/trending?timeRange=hourly", "timeRange"},
		{"zero page", "/api/v1/repos/trending?timeRange=daily&page=0", "page"},
		{"non-numeric page", "/api/v1/repos/trending?timeRange=daily&page=abc", "page"},
		{"zero pageSize", "/api/v1/repos/trending?timeRange=daily&pageSize=0", "pageSize"},
		{"oversized pageSize", "/api/v1/repos/trending?timeRange=daily&pageSize=101", "pageSize"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &fakeTrendingService{response: emptyTrendingResponse()}
			h := NewHandler(service, &fakeSyncService{}, "", testLogger())

			w := serve(h, http.MethodGet, tc.target, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tc.wantErr)
		})
	}
}

func TestGetTrendingDefaults(t *testing.T) {
	service := &fakeTrendingService{response: emptyTrendingResponse()}
	h := NewHandler(service, &fakeSyncService{}, "", testLogger())

	w := serve(h, http.MethodGet, "/api/v1/repos/trending?timeRange=weekly", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, trending.TrendingQuery{
		TimeRange: models.TimeRangeWeekly,
		Page:      1,
		PageSize:  9,
	}, service.lastQuery)
}

func TestGetTrendingPassesFilters(t *testing.T) {
	service := &fakeTrendingService{response: emptyTrendingResponse()}
	h := NewHandler(service, &fakeSyncService{}, "", testLogger())

	w := serve(h, http.MethodGet,
		"/api/v1/repos/trending?timeRange=monthly&page=3&pageSize=20&language=Go&search=cli", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, trending.TrendingQuery{
		TimeRange: models.TimeRangeMonthly,
		Page:      3,
		PageSize:  20,
		Language:  "Go",
		Search:    "cli",
	}, service.lastQuery)
}

func TestGetTrendingResponseBody(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	service := &fakeTrendingService{response: &models.TrendingResponse{
		Repos: []models.RepositoryWithTrendingScore{
			{
				Repository: models.Repository{
					ID:           1,
					GithubID:     101,
					Owner:        "octo",
					Name:         "widget",
					FullName:     "octo/widget",
					URL:          "https://github.com/octo/widget",
					Topics:       []string{"cli"},
					LastSyncedAt: now,
				},
				TrendingScore: 42.5,
			},
		},
		Pagination: models.PaginationMeta{
			CurrentPage: 1,
			TotalPages:  1,
			PageSize:    9,
			TotalRepos:  1,
		},
		LastUpdated: "2026-08-31T12:00:00Z",
	}}
	h := NewHandler(service, &fakeSyncService{}, "", testLogger())

	w := serve(h, http.MethodGet, "/api/v1/repos/trending?timeRange=daily", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "repos")
	assert.Contains(t, body, "pagination")
	assert.Contains(t, body, "lastUpdated")

	var repos []map[string]interface{}
	require.NoError(t, json.Unmarshal(body["repos"], &repos))
	require.Len(t, repos, 1)
	assert.Equal(t, "octo/widget", repos[0]["fullName"])
	assert.Equal(t, 42.5, repos[0]["trendingScore"])
}

func TestGetTrendingServiceError(t *testing.T) {
	service := &fakeTrendingService{err: errors.New("db exploded: secret dsn")}
	h := NewHandler(service, &fakeSyncService{}, "", testLogger())

	w := serve(h, http.MethodGet, "/api/v1/repos/trending?timeRange=daily", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to fetch trending repositories", body.Error, "internal detail stays out of the response")
}

func TestGetRepository(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service := &fakeTrendingService{repo: &models.Repository{
			ID:       1,
			FullName: "octo/widget",
			Topics:   []string{},
		}}
		h := NewHandler(service, &fakeSyncService{}, "", testLogger())

		w := serve(h, http.MethodGet, "/api/v1/repos/octo/widget", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "octo/widget", body["fullName"])
	})

	t.Run("absent responds with null", func(t *testing.T) {
		service := &fakeTrendingService{}
		h := NewHandler(service, &fakeSyncService{}, "", testLogger())

		w := serve(h, http.MethodGet, "/api/v1/repos/octo/missing", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "null", w.Body.String())
	})

	t.Run("invalid name", func(t *testing.T) {
		service := &fakeTrendingService{}
		h := NewHandler(service, &fakeSyncService{}, "", testLogger())

		w := serve(h, http.MethodGet, "/api/v1/repos/oct%20o/widget", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service error", func(t *testing.T) {
		service := &fakeTrendingService{err: errors.New("db down")}
		h := NewHandler(service, &fakeSyncService{}, "", testLogger())

		w := serve(h, http.MethodGet, "/api/v1/repos/octo/widget", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTriggerSync(t *testing.T) {
	result := &models.SyncResult{
		SyncedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Duration: 1200,
		TimeRanges: []models.TimeRangeResult{
			{TimeRange: models.TimeRangeDaily, Synced: 100, Created: 10, Updated: 90},
		},
	}

	t.Run("no secret configured", func(t *testing.T) {
		sync := &fakeSyncService{result: result}
		h := NewHandler(&fakeTrendingService{}, sync, "", testLogger())

		w := serve(h, http.MethodPost, "/api/v1/sync", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, sync.calls)

		var body SyncResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "Sync completed successfully", body.Message)
		require.NotNil(t, body.Result)
		assert.Equal(t, int64(1200), body.Result.Duration)
	})

	t.Run("missing secret is rejected", func(t *testing.T) {
		sync := &fakeSyncService{result: result}
		h := NewHandler(&fakeTrendingService{}, sync, "s3cret", testLogger())

		w := serve(h, http.MethodPost, "/api/v1/sync", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, sync.calls, "an unauthorized request must not start a sync")
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		sync := &fakeSyncService{result: result}
		h := NewHandler(&fakeTrendingService{}, sync, "s3cret", testLogger())

		w := serve(h, http.MethodPost, "/api/v1/sync", map[string]string{
			"Authorization": "Bearer nope",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, sync.calls)
	})

	t.Run("correct secret runs the sync", func(t *testing.T) {
		sync := &fakeSyncService{result: result}
		h := NewHandler(&fakeTrendingService{}, sync, "s3cret", testLogger())

		w := serve(h, http.MethodPost, "/api/v1/sync", map[string]string{
			"Authorization": "Bearer s3cret",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, sync.calls)
	})

	t.Run("sync failure", func(t *testing.T) {
		sync := &fakeSyncService{err: errors.New("GITHUB_TOKEN must be set")}
		h := NewHandler(&fakeTrendingService{}, sync, "", testLogger())

		w := serve(h, http.MethodPost, "/api/v1/sync", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body SyncResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Contains(t, body.Error, "GITHUB_TOKEN")
	})
}

func TestHealth(t *testing.T) {
	h := NewHandler(&fakeTrendingService{}, &fakeSyncService{}, "", testLogger())

	w := serve(h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
