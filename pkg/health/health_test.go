package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/pkg/health"
)

func TestCheckerRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()
		rep := health.New().Run(context.Background())
		assert.True(t, rep.Healthy())
		assert.Empty(t, rep.Checks)
	})

	t.Run("one failing check", func(t *testing.T) {
		t.Parallel()
		c := health.New().
			Add("postgres", func(context.Context) error { return nil }).
			Add("redis", func(context.Context) error { return errors.New("connection refused") }).
			Add("optional", nil)

		assert.Equal(t, []string{"postgres", "redis"}, c.Names())

		rep := c.Run(context.Background())
		assert.False(t, rep.Healthy())
		assert.Equal(t, health.StatusHealthy, rep.Checks["postgres"].Status)
		assert.Equal(t, "connection refused", rep.Checks["redis"].Error)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		c := health.New(health.WithTimeout(20*time.Millisecond)).
			Add("slow", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})
		rep := c.Run(context.Background())
		assert.Equal(t, health.ErrCheckTimeout.Error(), rep.Checks["slow"].Error)
	})
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	c := health.New().Add("db", func(context.Context) error { return errors.New("down") })

	t.Run("live", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		c.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("ready text", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		c.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Service Unavailable", rec.Body.String())
	})

	t.Run("ready json", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		c.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var rep health.Report
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&rep))
		assert.Equal(t, health.StatusUnhealthy, rep.Status)
		assert.Equal(t, "down", rep.Checks["db"].Error)
	})
}
