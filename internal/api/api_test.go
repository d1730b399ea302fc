package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/insight"
	"github.com/yourname/healthsync/internal/service"
	"github.com/yourname/healthsync/internal/storage"
)

type stubProvider struct {
	response string
	err      error
	calls    int
}

func (p *stubProvider) GenerateText(context.Context, string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

const providerResponse = `{
	"summary": "Good week.",
	"status": "good",
	"highlights": ["Steady sleep."],
	"recommendations": ["Keep it up."],
	"next_steps": "Check back next week."
}`

func newTestRouter(t *testing.T, provider insight.TextProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := internal.NewNopLogger()
	store, err := storage.NewSQLiteStore(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	engine := service.NewAggregationEngine(store, logger)
	pipeline := insight.NewPipeline(provider, logger)
	return NewRouter(NewServer(logger, store, engine, pipeline, "user_123"))
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func sleepBody(startTime, endTime string) map[string]interface{} {
	return map[string]interface{}{
		"start_time": startTime,
		"end_time":   endTime,
		"quality":    82,
		"phases":     map[string]int{"deep": 90, "light": 240, "rem": 120, "awake": 20},
		"source":     "test",
	}
}

func TestPostSleepThenQueryRecent(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	// Last night, relative to the handler's clock.
	end := time.Now().UTC().Add(-2 * time.Hour)
	start := end.Add(-8 * time.Hour)
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/health-data/sleep",
		sleepBody(start.Format(time.RFC3339), end.Format(time.RFC3339)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "success", env["status"])
	assert.Equal(t, "Sleep data stored successfully", env["message"])

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/health-data/sleep?days=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data, ok := env["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	rec := data[0].(map[string]interface{})
	assert.Equal(t, float64(82), rec["quality"])
	phases := rec["phases"].(map[string]interface{})
	assert.Equal(t, float64(90), phases["deep"])
	assert.Equal(t, float64(240), phases["light"])
}

func TestPostSleepEndBeforeStartRejected(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/health-data/sleep",
		sleepBody("2026-08-30T06:00:00Z", "2026-08-29T22:00:00Z"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env["status"])
	assert.Equal(t, "validation failed", env["error"])
	details := env["details"].(map[string]interface{})
	assert.Equal(t, "endtime", details["field"])
}

func TestPostHeartRateAndWeight(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/health-data/heart-rate", map[string]interface{}{
		"timestamp": "2026-08-30T08:00:00Z",
		"value":     72,
		"source":    "watch",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Heart rate data stored successfully", env["message"])

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/health-data/weight", map[string]interface{}{
		"timestamp": "2026-08-30T07:00:00Z",
		"value":     81.4,
		"bmi":       24.6,
		"source":    "scale",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Weight data stored successfully", env["message"])
}

func TestDaysParameterBounds(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	for _, days := range []string{"1", "30"} {
		w, _ := doJSON(t, r, http.MethodGet, "/api/v1/health-data/sleep?days="+days, nil)
		assert.Equal(t, http.StatusOK, w.Code, "days=%s should be accepted", days)
	}
	for _, days := range []string{"0", "31", "abc"} {
		w, env := doJSON(t, r, http.MethodGet, "/api/v1/health-data/sleep?days="+days, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%s should be rejected", days)
		assert.Equal(t, "error", env["status"])
	}
}

func TestUnknownMetricTypeRejected(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/health-data/blood-pressure", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := env["details"].(map[string]interface{})
	assert.Equal(t, "metric_type", details["field"])
}

func TestDailySummaryShape(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/health-data/daily/2026-08-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := env["data"].(map[string]interface{})
	assert.NotNil(t, data["sleep"])
	assert.NotNil(t, data["heart_rate"])
	assert.NotNil(t, data["weight"])
	_, present := data["heart_rate_average"]
	assert.True(t, present)
	assert.Nil(t, data["heart_rate_average"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/health-data/daily/not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendsRoute(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/health-data/trends", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := env["data"].(map[string]interface{})
	assert.Contains(t, data, "sleep")
	assert.Contains(t, data, "heart_rate")
	assert.Contains(t, data, "weight")

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/health-data/trends?days=91", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecentInsightsNoData(t *testing.T) {
	provider := &stubProvider{response: providerResponse}
	r := newTestRouter(t, provider)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/insights/recent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env["status"])
	ins := env["insights"].(map[string]interface{})
	assert.Equal(t, "fair", ins["status"])
	assert.Zero(t, provider.calls, "empty window must not contact the provider")
}

func TestRecentInsightsGenerated(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/health-data/weight", map[string]interface{}{
		"timestamp": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		"value":     81.4,
		"source":    "scale",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/insights/recent?days=7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ins := env["insights"].(map[string]interface{})
	assert.Equal(t, "good", ins["status"])
	assert.Equal(t, "Good week.", ins["summary"])
}

func TestRecentInsightsProviderDownStillSucceeds(t *testing.T) {
	r := newTestRouter(t, &stubProvider{err: errors.New("connection refused")})

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/health-data/weight", map[string]interface{}{
		"timestamp": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		"value":     81.4,
		"source":    "scale",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/insights/recent?days=7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env["status"])
	ins := env["insights"].(map[string]interface{})
	assert.Equal(t, "fair", ins["status"])
	assert.NotEmpty(t, ins["highlights"])
	assert.NotEmpty(t, ins["recommendations"])
}

func TestDailyInsights(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/health-data/heart-rate", map[string]interface{}{
		"timestamp": "2026-08-30T08:00:00Z",
		"value":     72,
		"source":    "watch",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/insights/daily/2026-08-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ins := env["insights"].(map[string]interface{})
	assert.Equal(t, "good", ins["status"])
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, &stubProvider{response: providerResponse})

	w, env := doJSON(t, r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", env["message"])
}
