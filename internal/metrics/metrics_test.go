package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	m, _ := Setup()

	m.RecordHTTPRequest(http.MethodGet, "/posts", http.StatusOK, 15*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "/posts", http.StatusOK, 5*time.Millisecond)
	m.RecordDispatch("thanks", nil)
	m.RecordDispatch("internal", errors.New("boom"))
	m.RecordRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/posts", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailDispatches.WithLabelValues("thanks", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailDispatches.WithLabelValues("internal", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal))
}

func TestHandler(t *testing.T) {
	m, handler := Setup()
	m.RecordDispatch("thanks", nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `postsapi_email_dispatches_total{kind="thanks",outcome="sent"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
