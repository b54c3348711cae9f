package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("wechat", "success")
	c.RecordLogin("wechat", "success")
	c.RecordLogin("guest", "rejected")
	c.RecordTrustDecision("unknown")
	c.RecordLogout()
	c.RecordStorageFailure("write")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.logins.WithLabelValues("wechat", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.logins.WithLabelValues("guest", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.trustDecisions.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.logouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.storageFailures.WithLabelValues("write")))
}

func TestCollector_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin("auto", "success")
	c.RecordTrustDecision("confirmed")
	c.RecordLogout()
	c.RecordStorageFailure("clear")

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogout()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	SetupMetricsRoute(reg).ServeHTTP(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "healthkeeper_logout_total"))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() {
		r.RecordLogin("a", "b")
		r.RecordTrustDecision("c")
		r.RecordLogout()
		r.RecordStorageFailure("d")
	})
}
