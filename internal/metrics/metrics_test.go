package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.ObserveOperation("login", "success")
	r.ObserveOperation("login", "success")
	r.ObserveOperation("login", "invalid_credentials")
	r.ObserveVerification("expired")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("login", "invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verifications.WithLabelValues("expired")))
}

func TestRecorderHandlerExposesCounters(t *testing.T) {
	r := NewRecorder()
	r.ObserveOperation("signup", "success")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `auth_operations_total{operation="signup",result="success"} 1`))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveOperation("login", "success")
		r.ObserveVerification("ok")
	})
}
