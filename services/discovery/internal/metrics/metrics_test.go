package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(apperrors.NotFound("product", "1")))
	assert.Equal(t, "transport_failure", Outcome(fmt.Errorf("x: %w", apperrors.TransportFailure("catalog", errors.New("eof")))))
	assert.Equal(t, "internal_error", Outcome(errors.New("boom")))
}

func TestObserveCatalog(t *testing.T) {
	before := testutil.ToFloat64(catalogRequests.WithLabelValues("search", "ok"))

	ObserveCatalog("search", time.Now().Add(-time.Millisecond), nil)

	assert.Equal(t, before+1, testutil.ToFloat64(catalogRequests.WithLabelValues("search", "ok")))
}

func TestStaleDiscarded(t *testing.T) {
	before := testutil.ToFloat64(staleResponses.WithLabelValues("product"))

	StaleDiscarded("product")
	StaleDiscarded("product")

	assert.Equal(t, before+2, testutil.ToFloat64(staleResponses.WithLabelValues("product")))
}

func TestSetLiveSessions(t *testing.T) {
	SetLiveSessions("shop", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(liveSessions.WithLabelValues("shop")))
}

func TestReviewSubmitted(t *testing.T) {
	before := testutil.ToFloat64(reviewSubmissions.WithLabelValues("unauthorized"))

	ReviewSubmitted(apperrors.Unauthorized("login required"))

	assert.Equal(t, before+1, testutil.ToFloat64(reviewSubmissions.WithLabelValues("unauthorized")))
}
