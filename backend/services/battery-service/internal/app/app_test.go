package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"batteryhub/backend/services/battery-service/internal/config"
)

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.HTTP.Port = "0"
	cfg.Storage.Driver = config.DriverMemory
	cfg.Redis.TTL = 60
	return cfg
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestAppServesBatteriesEndToEnd(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.Redis.Addr = mr.Addr()

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	h := a.Handler()

	rec := do(t, h, http.MethodPost, "/api/batteries", `[
		{"name":"Cannington","postcode":"6107","wattCapacity":13500},
		{"name":"armadale","postcode":"6112","wattCapacity":25000},
		{"name":"Hay Street","postcode":"6000","wattCapacity":23500}]`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = do(t, h, http.MethodGet, "/api/batteries?postcode1=6100&postcode2=6200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"batteryNames":["armadale","Cannington"],"totalWattCapacity":38500,"averageWattCapacity":19250}`, rec.Body.String())
	mr.CheckGet(t, "batteries:range:generation", "1")

	rec = do(t, h, http.MethodPost, "/api/batteries", `[{"name":"Bentley","postcode":"6102","wattCapacity":500}]`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/batteries?postcode1=6100&postcode2=6200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		BatteryNames []string `json:"batteryNames"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []string{"armadale", "Bentley", "Cannington"}, result.BatteryNames)
}

func TestAppExposesHealthAndMetrics(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	h := a.Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	do(t, h, http.MethodGet, "/api/batteries?postcode1=1&postcode2=2", "")

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",route="api_batteries",status="200"} 1`)
	assert.Contains(t, body, `battery_storage_operations_total{driver="memory",operation="find_in_range",outcome="ok"} 1`)
}

func TestAppFailsWhenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := memoryConfig()
	cfg.Redis.Addr = addr

	_, err := New(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")
}
