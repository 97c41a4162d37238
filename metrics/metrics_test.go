package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "/api/v1/submitCase", "201"))
	RecordHTTPRequest("POST", "/api/v1/submitCase", http.StatusCreated, 12*time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "/api/v1/submitCase", "201"))
	assert.Equal(t, before+1, after)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(casesSubmitted.WithLabelValues("Claimant Wins"))
	CaseSubmitted("Claimant Wins")
	assert.Equal(t, before+1, testutil.ToFloat64(casesSubmitted.WithLabelValues("Claimant Wins")))

	beforeProofs := testutil.ToFloat64(proofsAttached)
	ProofAttached()
	assert.Equal(t, beforeProofs+1, testutil.ToFloat64(proofsAttached))

	beforeLimited := testutil.ToFloat64(rateLimited.WithLabelValues("submit"))
	RateLimited("submit")
	assert.Equal(t, beforeLimited+1, testutil.ToFloat64(rateLimited.WithLabelValues("submit")))

	SetFeedClients(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(feedClients))
}

func TestInFlight(t *testing.T) {
	start := testutil.ToFloat64(httpInFlight)
	IncInFlight()
	assert.Equal(t, start+1, testutil.ToFloat64(httpInFlight))
	DecInFlight()
	assert.Equal(t, start, testutil.ToFloat64(httpInFlight))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordDBOperation("FindOne", "cases", time.Millisecond, errors.New("boom"))

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "jurychain_db_operation_duration_seconds")
	assert.Contains(t, rr.Body.String(), `success="false"`)
}
