package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/spotfinder/pkg/cache"
	"github.com/matzehuels/spotfinder/pkg/config"
	"github.com/matzehuels/spotfinder/pkg/observability"
	"github.com/matzehuels/spotfinder/pkg/pipeline"
)

const roomJSON = `{"objects": [
	{"name": "floor", "bbox_min": [0, 0, 0], "bbox_max": [5, 5, 0.1], "bbox_size": [5, 5, 0.1]},
	{"name": "wall-w", "bbox_min": [0, 0, 0], "bbox_max": [0.1, 5, 2.5], "bbox_size": [0.1, 5, 2.5]},
	{"name": "wall-e", "bbox_min": [4.9, 0, 0], "bbox_max": [5, 5, 2.5], "bbox_size": [0.1, 5, 2.5]},
	{"name": "table", "bbox_min": [2, 2, 0], "bbox_max": [3, 3, 1], "bbox_size": [1, 1, 1]}
]}`

func newTestServer(t *testing.T) (*httptest.Server, *observability.Metrics) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	observability.SetHTTPHooks(metrics)
	observability.SetPipelineHooks(metrics)
	t.Cleanup(observability.Reset)

	srv := New(pipeline.NewRunner(nil, nil, logger), metrics, config.Default(), logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, metrics
}

func post(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	return postTo(t, ts, "/v1/placements", body)
}

func postTo(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPlacement(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, out := post(t, ts, `{"name": "cabinet", "scene": `+roomJSON+`, "footprint": [1.0, 0.5, 2.0]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", out)

	id := resp.Header.Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "response should carry a uuid request id")
	assert.Equal(t, id, out["request_id"])
	assert.Equal(t, "cabinet", out["name"])
	assert.NotEmpty(t, out["scene_hash"])

	result := out["result"].(map[string]any)
	assert.Greater(t, result["total_valid"].(float64), 0.0)
	selected := result["selected"].([]any)
	assert.NotEmpty(t, selected)
	assert.LessOrEqual(t, len(selected), 10)
	assert.Len(t, result["debug"].([]any), 10)
}

func TestPlacementConfigOverride(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, out := post(t, ts, `{"scene": `+roomJSON+`, "footprint": [1.0, 0.5, 2.0], "config": {"top_k": 2, "debug_limit": 3}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", out)

	result := out["result"].(map[string]any)
	assert.Len(t, result["selected"].([]any), 2)
	assert.Len(t, result["debug"].([]any), 3)
}

func TestPlacementKeepsCallerRequestID(t *testing.T) {
	ts, _ := newTestServer(t)
	id := uuid.NewString()

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/placements",
		strings.NewReader(`{"scene": `+roomJSON+`, "footprint": [1, 1, 1]}`))
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
}

func TestPlacementErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"bad json", `{"scene": `, "INVALID_FORMAT"},
		{"missing scene", `{"footprint": [1, 1, 1]}`, "INVALID_INPUT"},
		{"missing footprint", `{"scene": ` + roomJSON + `}`, "INVALID_FOOTPRINT"},
		{"zero footprint", `{"scene": ` + roomJSON + `, "footprint": [0, 1, 1]}`, "INVALID_FOOTPRINT"},
		{"empty scene", `{"scene": {"objects": []}, "footprint": [1, 1, 1]}`, "INVALID_SCENE"},
		{"missing bbox", `{"scene": {"objects": [{"bbox_min": [0, 0, 0]}]}, "footprint": [1, 1, 1]}`, "INVALID_SCENE"},
		{"bad config", `{"scene": ` + roomJSON + `, "footprint": [1, 1, 1], "config": {"grid_step": 0}}`, "INVALID_CONFIG"},
		{"grid too fine", `{"scene": ` + roomJSON + `, "footprint": [1, 1, 1], "config": {"grid_step": 1e-6}}`, "INVALID_CONFIG"},
		{"bad thresholds", `{"scene": ` + roomJSON + `, "footprint": [1, 1, 1], "thresholds": {"wall_min_z": -1}}`, "INVALID_CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, ts, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			errBody := out["error"].(map[string]any)
			assert.Equal(t, tt.code, errBody["code"])
			assert.NotEmpty(t, errBody["message"])
		})
	}
}

func TestPlacementInfeasible(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, out := post(t, ts, `{"scene": `+roomJSON+`, "footprint": [6, 1, 1]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := out["result"].(map[string]any)
	assert.Equal(t, true, result["infeasible"])
	assert.Equal(t, 0.0, result["total_valid"])
	assert.Empty(t, result["selected"])
}

func TestBodyLimit(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 64
	ts := httptest.NewServer(New(pipeline.NewRunner(nil, nil, logger), nil, cfg, logger).Handler())
	defer ts.Close()

	resp, out := post(t, ts, `{"scene": `+roomJSON+`, "footprint": [1, 1, 1]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_FORMAT", out["error"].(map[string]any)["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	post(t, ts, `{"scene": `+roomJSON+`, "footprint": [1.0, 0.5, 2.0]}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "spotfinder_searches_total")
	assert.Contains(t, body, `route="/v1/placements"`)
}

func TestMetricsDisabled(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	ts := httptest.NewServer(New(pipeline.NewRunner(nil, nil, logger), nil, config.Default(), logger).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStoredScene(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	srv := New(pipeline.NewRunner(fc, nil, logger), nil, config.Default(), logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, out := postTo(t, ts, "/v1/scenes", roomJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	hash, _ := out["scene_hash"].(string)
	require.NotEmpty(t, hash)
	assert.EqualValues(t, 4, out["objects"])

	resp, out = post(t, ts, `{"scene_hash": "`+hash+`", "footprint": [1, 0.5, 2]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, hash, out["scene_hash"])
	result := out["result"].(map[string]any)
	assert.NotEmpty(t, result["selected"])

	resp, out = post(t, ts, `{"scene_hash": "deadbeef", "footprint": [1, 0.5, 2]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", out["error"].(map[string]any)["code"])
}

func TestStoreSceneInvalid(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, out := postTo(t, ts, "/v1/scenes", `{"objects": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_SCENE", out["error"].(map[string]any)["code"])
}

func TestVersion(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, info["version"])
	assert.Contains(t, info, "commit")
}
