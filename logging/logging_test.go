package logging_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/fitness-server/logging"
)

func TestNewLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, logging.New(logging.Config{Level: "debug"}).GetLevel())
	assert.Equal(t, logrus.WarnLevel, logging.New(logging.Config{Level: "WARN"}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, logging.New(logging.Config{Level: "nonsense"}).GetLevel())
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: "info", Format: "json", Output: &buf})

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context(), logger).Info("inside")
		seen = w.Header().Get(logging.RequestIDHeader)
		w.WriteHeader(http.StatusTeapot)
	})
	h := logging.RequestID(logger)(logging.RequestLogger(logger)(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/workouts", nil)
	req.Header.Set(logging.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(logging.RequestIDHeader))
	assert.Equal(t, "req-42", seen)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.Equal(t, "/api/workouts", entry["path"])
}

func TestRequestIDGenerated(t *testing.T) {
	logger := logging.New(logging.Config{Output: &bytes.Buffer{}})
	h := logging.RequestID(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(logging.RequestIDHeader), 36)
}
