package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/DataSweeper/internal/config"
	"github.com/JonMunkholm/DataSweeper/internal/logging"
)

// echoAddr writes the RemoteAddr the handler sees.
var echoAddr = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(r.RemoteAddr))
})

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "untrusted peer keeps remote addr",
			trusted: []string{"10.0.0.0/8"},
			remote:  "203.0.113.5:4000",
			headers: map[string]string{"X-Real-IP": "1.2.3.4"},
			want:    "203.0.113.5:4000",
		},
		{
			name:    "trusted peer uses X-Real-IP",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "1.2.3.4"},
			want:    "1.2.3.4",
		},
		{
			name:    "trusted peer uses first forwarded hop",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 10.9.9.9"},
			want:    "198.51.100.7",
		},
		{
			name:    "single address entry",
			trusted: []string{"192.168.1.1"},
			remote:  "192.168.1.1:80",
			headers: map[string]string{"X-Real-IP": "5.6.7.8"},
			want:    "5.6.7.8",
		},
		{
			name:    "invalid entries are skipped",
			trusted: []string{"not-an-ip", ""},
			remote:  "192.168.1.1:80",
			headers: map[string]string{"X-Real-IP": "5.6.7.8"},
			want:    "192.168.1.1:80",
		},
		{
			name:    "garbage header is ignored",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "nope"},
			want:    "10.1.2.3:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			TrustedRealIP(tt.trusted)(echoAddr).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	enabled := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}

	tests := []struct {
		name     string
		cfg      *config.SecurityConfig
		header   string
		value    string
		wantCode int
		wantErr  string
	}{
		{"disabled", &config.SecurityConfig{}, "", "", http.StatusNoContent, ""},
		{"missing key", enabled, "", "", http.StatusUnauthorized, "AUTH001"},
		{"invalid key", enabled, "X-API-Key", "nope", http.StatusForbidden, "AUTH002"},
		{"valid header", enabled, "X-API-Key", "k2", http.StatusNoContent, ""},
		{"valid bearer", enabled, "Authorization", "Bearer k1", http.StatusNoContent, ""},
		{"wrong scheme", enabled, "Authorization", "Basic k1", http.StatusUnauthorized, "AUTH001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/files/x", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			APIKeyAuth(tt.cfg)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr == "" {
				return
			}
			var body authError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body.Code)
			assert.NotEmpty(t, body.Action)
		})
	}
}

func TestLogger_RecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "debug", "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/files/abc", nil)
	req.Header.Set("User-Agent", "sweeper-test")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "/files/abc", entry["path"])
	assert.EqualValues(t, http.StatusNotFound, entry["status"])
	assert.EqualValues(t, len("missing"), entry["bytes"])
	assert.Equal(t, "sweeper-test", entry["user_agent"])
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	_, _ = ww.Write([]byte("ok"))
	ww.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusOK, ww.status)
	assert.Equal(t, 2, ww.bytes)
	assert.Same(t, rec, ww.Unwrap())
}
