package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME and the .env lookup at temp dirs and clears LABCTL_*.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"API_BASE_URL", "REQUEST_TIMEOUT", "REFRESH_INTERVAL", "LOG_FILE", "LOG_LEVEL"} {
		t.Setenv(envPrefix+key, "")
		os.Unsetenv(envPrefix + key)
	}
	prev := dotenvPath
	dotenvPath = filepath.Join(t.TempDir(), ".env")
	t.Cleanup(func() { dotenvPath = prev })
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %s, want %s", cfg.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.RefreshInterval != 0 {
		t.Fatalf("RefreshInterval = %s, want 0", cfg.RefreshInterval)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
api_base_url = "  http://labs.internal:9000  "
request_timeout = " 3s "
refresh_interval = "30s"
log_file = "  ~/logs/labctl.log  "
log_level = "DEBUG"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://labs.internal:9000" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %s, want 3s", cfg.RequestTimeout)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Fatalf("RefreshInterval = %s, want 30s", cfg.RefreshInterval)
	}
	if cfg.LogFile != filepath.Join(home, "logs", "labctl.log") {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogDir() != filepath.Join(home, "logs") {
		t.Fatalf("LogDir = %q", cfg.LogDir())
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
api_base_url = "   "
log_level = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `api_base_url = [`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidDurationFails(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `request_timeout = "soon"`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "request_timeout") {
		t.Fatalf("Load error = %v, want request_timeout parse error", err)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
api_base_url = "http://from-file:1"
request_timeout = "3s"
`)
	t.Setenv("LABCTL_API_BASE_URL", "http://from-env:2")
	t.Setenv("LABCTL_REFRESH_INTERVAL", "1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://from-env:2" {
		t.Fatalf("APIBaseURL = %q, want env value", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %s, want file value 3s", cfg.RequestTimeout)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Fatalf("RefreshInterval = %s, want 1m", cfg.RefreshInterval)
	}
}

func TestLoad_DotenvFillsUnsetVariables(t *testing.T) {
	isolate(t)
	writeFile(t, dotenvPath, "LABCTL_LOG_LEVEL=warn\nLABCTL_API_BASE_URL=http://from-dotenv:3\n")
	t.Setenv("LABCTL_API_BASE_URL", "http://from-env:2")
	t.Cleanup(func() { os.Unsetenv("LABCTL_LOG_LEVEL") })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn from .env", cfg.LogLevel)
	}
	if cfg.APIBaseURL != "http://from-env:2" {
		t.Fatalf("APIBaseURL = %q, want the real environment to win over .env", cfg.APIBaseURL)
	}
}

func TestLoad_InvalidEnvironmentFails(t *testing.T) {
	isolate(t)
	t.Setenv("LABCTL_REQUEST_TIMEOUT", "forever")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("Load returned nil error, want environment parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}

	bad := cfg
	bad.RequestTimeout = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("zero request timeout accepted")
	}

	bad = cfg
	bad.RefreshInterval = -time.Second
	if err := bad.Validate(); err == nil {
		t.Fatalf("negative refresh interval accepted")
	}

	bad = cfg
	bad.LogLevel = "chatty"
	if err := bad.Validate(); err == nil {
		t.Fatalf("unknown log level accepted")
	}
}

func TestOverride_IgnoresEmptyValues(t *testing.T) {
	cfg := Default()
	cfg.Override("", "  ")
	if cfg.APIBaseURL != defaultAPIBaseURL || cfg.LogLevel != defaultLogLevel {
		t.Fatalf("Override with empty values changed config: %+v", cfg)
	}
	cfg.Override(" http://flag:4 ", "ERROR")
	if cfg.APIBaseURL != "http://flag:4" || cfg.LogLevel != "error" {
		t.Fatalf("Override = %+v", cfg)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
