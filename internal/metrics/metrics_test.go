package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveDispatch(t *testing.T) {
	c := New(false)

	c.ObserveDispatch("pong", time.Millisecond)
	c.ObserveDispatch("pong", 2*time.Millisecond)
	c.ObserveDispatch("invalid_signature", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.interactions.WithLabelValues("pong")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.interactions.WithLabelValues("invalid_signature")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_Handler(t *testing.T) {
	c := New(false)
	c.ObserveDispatch("command", time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `slashgw_interactions_total{outcome="command"} 1`)
	assert.Contains(t, string(body), "slashgw_dispatch_duration_seconds_bucket")
}

func TestCollector_PrivateRegistries(t *testing.T) {
	a := New(true)
	b := New(true)
	a.ObserveDispatch("pong", time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.interactions.WithLabelValues("pong")))
	assert.NotSame(t, a.Registry(), b.Registry())
}
