package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/meshledger/meshledger/app/services/viewer/handlers"
	"github.com/meshledger/meshledger/business/sys/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUIMux(t *testing.T) {
	app, err := handlers.UIMux(handlers.UIConfig{
		Build:    "test",
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		Metrics:  metrics.New(),
		NodeHost: "10.0.0.2:8080",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(app)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "10.0.0.2:8080")
	assert.Contains(t, string(body), "viewer: block: ")

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `meshledger_http_requests_total{code="200",method="GET"} 1`)
}
