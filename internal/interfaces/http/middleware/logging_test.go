package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
)

func observedLogging(t *testing.T, config LoggingConfig, handler http.HandlerFunc) (*observer.ObservedLogs, http.Handler) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewLoggerFromCore(core)
	return logs, RequestLogging(logger, nil, config)(handler)
}

func TestRequestLoggingRecordsStatusAndSize(t *testing.T) {
	logs, h := observedLogging(t, DefaultLoggingConfig(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/owners", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, http.MethodPost, fields["method"])
	assert.Equal(t, "/api/v1/owners", fields["path"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, int64(10), fields["bytes"])
}

func TestRequestLoggingLevelTracksStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"server error", http.StatusBadGateway, zapcore.ErrorLevel},
		{"client error", http.StatusConflict, zapcore.WarnLevel},
		{"success", http.StatusOK, zapcore.InfoLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs, h := observedLogging(t, DefaultLoggingConfig(), func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level)
		})
	}
}

func TestRequestLoggingWarnsOnSlowRequests(t *testing.T) {
	config := LoggingConfig{SlowThreshold: time.Nanosecond}
	logs, h := observedLogging(t, config, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "slow request completed", entries[0].Message)
}

func TestRequestLoggingSkipsConfiguredPaths(t *testing.T) {
	logs, h := observedLogging(t, DefaultLoggingConfig(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Empty(t, logs.All())
}

func TestWrappedResponseWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newWrappedResponseWriter(rec)

	_, err := w.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.statusCode)
	assert.Equal(t, int64(2), w.bytesWritten)
}
