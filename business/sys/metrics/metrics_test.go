package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meshledger/meshledger/business/sys/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct{}

func (node) QueryChainLength() int      { return 3 }
func (node) QueryMempoolLength() int    { return 2 }
func (node) QueryKnownPeersLength() int { return 1 }

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	require.NoError(t, m.Register(metrics.NewNodeCollector(node{}, "node-a")))

	m.AddRequest(http.MethodGet, http.StatusOK)
	m.AddRequest(http.MethodGet, http.StatusOK)
	m.AddError()
	m.AddPanic()

	body := scrape(t, m)

	assert.Contains(t, body, `meshledger_chain_length{node="node-a"} 3`)
	assert.Contains(t, body, `meshledger_mempool_transactions{node="node-a"} 2`)
	assert.Contains(t, body, `meshledger_peers_known{node="node-a"} 1`)
	assert.Contains(t, body, `meshledger_http_requests_total{code="200",method="GET"} 2`)
	assert.Contains(t, body, `meshledger_http_errors_total 1`)
	assert.Contains(t, body, `meshledger_http_panics_total 1`)
}

func TestMetricsAreIndependent(t *testing.T) {
	a := metrics.New()
	b := metrics.New()

	a.AddError()

	assert.Contains(t, scrape(t, a), `meshledger_http_errors_total 1`)
	assert.Contains(t, scrape(t, b), `meshledger_http_errors_total 0`)
}
