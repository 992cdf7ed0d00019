package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dermora-assistant/internal/usecase"
)

func TestRecorder(t *testing.T) {
	rec := NewRecorder()

	rec.ObserveResolution(usecase.Resolution{Source: usecase.SourceKeyword, Outcome: usecase.OutcomeMatched}, time.Millisecond)
	rec.ObserveResolution(usecase.Resolution{Source: usecase.SourceRemote, Outcome: usecase.OutcomeNoAnswer}, time.Second)
	rec.ObserveResolution(usecase.Resolution{Source: usecase.SourceRemote, Outcome: usecase.OutcomeNoAnswer}, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.resolutions.WithLabelValues("keyword", "matched")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.resolutions.WithLabelValues("remote", "no_answer")))

	resp := httptest.NewRecorder()
	rec.Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `dermora_resolutions_total{outcome="no_answer",source="remote"} 2`)
	assert.Contains(t, resp.Body.String(), "dermora_resolution_duration_seconds_bucket")
}
