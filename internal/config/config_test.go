package config

import (
	"strings"
	"testing"
	"time"
)

// env returns a lookup backed by a map.
func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// validConfig returns a config that passes Validate.
func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Upload:   UploadConfig{MaxFileSize: 1, MaxFiles: 1, MaxConcurrent: 1, MaxWaitTime: time.Second},
		Session:  SessionConfig{TTL: time.Minute, MaxSessions: 1, CleanupInterval: time.Second},
		Pipeline: PipelineConfig{PreviewRows: 5, ChartSeries: 2, FillPolicy: "leave"},
		Rate:     RateLimitConfig{Enabled: true, RequestsPerMinute: 100, Burst: 10},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxFileSize != 52428800 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 52428800)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 30*time.Minute)
	}
	if cfg.Pipeline.PreviewRows != 5 {
		t.Errorf("Pipeline.PreviewRows = %d, want 5", cfg.Pipeline.PreviewRows)
	}
	if cfg.Pipeline.ChartSeries != 2 {
		t.Errorf("Pipeline.ChartSeries = %d, want 2", cfg.Pipeline.ChartSeries)
	}
	if cfg.Pipeline.FillPolicy != "leave" {
		t.Errorf("Pipeline.FillPolicy = %q, want leave", cfg.Pipeline.FillPolicy)
	}
	if !cfg.Rate.Enabled {
		t.Error("Rate.Enabled = false, want true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_CONCURRENT", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PIPELINE_FILL_POLICY", "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 10)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Pipeline.FillPolicy != "error" {
		t.Errorf("Pipeline.FillPolicy = %q, want error", cfg.Pipeline.FillPolicy)
	}
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_READ_TIMEOUT": "45s",
		"SESSION_TTL":         "1h30m",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Session.TTL != 90*time.Minute {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 90*time.Minute)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := map[string]string{
		"SERVER_PORT":          "eighty",
		"SESSION_TTL":          "soon",
		"RATE_LIMIT_ENABLED":   "maybe",
		"PIPELINE_FILL_POLICY": "zero",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(env(map[string]string{name: value}))
			if err == nil {
				t.Fatalf("LoadFrom() expected error for %s=%q", name, value)
			}
			if !strings.Contains(err.Error(), name) {
				t.Errorf("error should mention %s: %v", name, err)
			}
		})
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , ,192.168.0.0/16",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		mention string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"no files", func(c *Config) { c.Upload.MaxFiles = 0 }, "UPLOAD_MAX_FILES"},
		{"no sessions", func(c *Config) { c.Session.MaxSessions = 0 }, "SESSION_MAX"},
		{"bad policy", func(c *Config) { c.Pipeline.FillPolicy = "zero" }, "PIPELINE_FILL_POLICY"},
		{"zero burst", func(c *Config) { c.Rate.Burst = 0 }, "RATE_LIMIT_BURST"},
		{"api key required", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("validConfig().Validate() = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Errorf("error should mention %s: %v", tt.mention, err)
			}
		})
	}
}

func TestValidate_FillPolicyIgnoresCase(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.FillPolicy = "ERROR"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with FillPolicy=ERROR: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"::1", 443, "[::1]:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksAPIKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Security.APIKeys = []string{"super-secret-key"}

	str := cfg.String()
	if strings.Contains(str, "super-secret-key") {
		t.Error("String() should mask API keys")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}
