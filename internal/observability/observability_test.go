package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/blog-platform/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"text debug", "DEBUG", "text", false},
		{"bad level", "loud", "json", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Environment: "test"}
			cfg.Observability.LogLevel = tt.level
			cfg.Observability.LogFormat = tt.format

			logger, err := NewLogger(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest(http.MethodGet, "/api/v1/posts", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/posts", http.StatusOK, 20*time.Millisecond)
	m.RecordAuthorization("post", "update", false)
	m.RecordAuthorization("post", "update", true)
	m.RecordAuthorization("post", "update", false)
	m.RecordValidationFailure("post")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/posts", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authzDecisions.WithLabelValues("post", "update", OutcomeDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authzDecisions.WithLabelValues("post", "update", OutcomeAllowed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("post")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordValidationFailure("comment_api")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `blog_validation_failures_total{rule_set="comment_api"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.RecordAuthorization("post", "view", true)
		m.RecordValidationFailure("post")
	})
	assert.Nil(t, m.Registry())
}
