package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("uses defaults when no options are provided", func(t *testing.T) {
		client := New()

		require.NotNil(t, client)
		assert.Nil(t, client.Logger)
		assert.Equal(t, 5*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 0, client.RetryMax)
	})

	t.Run("applies provided options", func(t *testing.T) {
		client := New(
			WithTimeout(2*time.Second),
			WithRetryWaitMin(10*time.Millisecond),
			WithRetryWaitMax(20*time.Millisecond),
			WithRetryMax(3),
		)

		assert.Equal(t, 2*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 10*time.Millisecond, client.RetryWaitMin)
		assert.Equal(t, 20*time.Millisecond, client.RetryWaitMax)
		assert.Equal(t, 3, client.RetryMax)
	})

	t.Run("ignores non positive values", func(t *testing.T) {
		client := New(WithTimeout(0), WithRetryMax(-1))

		assert.Equal(t, 5*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 0, client.RetryMax)
	})
}

func TestRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(
		WithRetryWaitMin(time.Millisecond),
		WithRetryWaitMax(2*time.Millisecond),
		WithRetryMax(1),
	)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}
