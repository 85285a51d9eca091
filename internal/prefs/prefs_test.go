package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/labctl/labctl/internal/labapi"
)

func writePrefs(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.Filter() != labapi.FilterAll {
		t.Fatalf("Filter = %v, want all", p.Filter())
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writePrefs(t, filepath.Join(home, ".config", "labctl", "prefs.toml"), "theme = \"Slate\"\nstatus_filter = \"inactive\"\n")

	p := Load("")
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	if p.Filter() != labapi.FilterInactive {
		t.Fatalf("Filter = %v, want inactive", p.Filter())
	}
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	if err := Save(path, Prefs{Theme: "Kanagawa", StatusFilter: labapi.FilterActive.String()}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	p := Load(path)
	if p.Theme != "Kanagawa" {
		t.Fatalf("Theme = %q, want Kanagawa", p.Theme)
	}
	if p.Filter() != labapi.FilterActive {
		t.Fatalf("Filter = %v, want active", p.Filter())
	}
}

func TestLoad_EmptyOrUnknownValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	writePrefs(t, path, "theme = \"  \"\nstatus_filter = \"archived\"\n")

	p := Load(path)
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.StatusFilter != "all" {
		t.Fatalf("StatusFilter = %q, want all", p.StatusFilter)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	writePrefs(t, path, "not valid toml {{{\n")

	p := Load(path)
	if p != defaults() {
		t.Fatalf("Load = %+v, want defaults", p)
	}
}
