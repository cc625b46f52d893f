package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsRouteAndStatus(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/characters/:id", func(c echo.Context) error {
		if c.Param("id") == "0" {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return c.NoContent(http.StatusOK)
	})

	ok := httpRequests.WithLabelValues(http.MethodGet, "/api/characters/:id", "200")
	missing := httpRequests.WithLabelValues(http.MethodGet, "/api/characters/:id", "404")
	okBefore, missingBefore := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	for _, path := range []string{"/api/characters/1", "/api/characters/2", "/api/characters/0"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, missingBefore+1, testutil.ToFloat64(missing))
}

func TestAuthCounters(t *testing.T) {
	before := testutil.ToFloat64(logins.WithLabelValues(TierMaster, OutcomeSuccess))
	RecordLogin(TierMaster, OutcomeSuccess)
	assert.Equal(t, before+1, testutil.ToFloat64(logins.WithLabelValues(TierMaster, OutcomeSuccess)))

	SetBlacklistSize(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(blacklistEntries))
}
