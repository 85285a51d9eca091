package labapi

import (
	"encoding/json"
	"testing"
)

func TestLab_DecodesOptionalSetupSteps(t *testing.T) {
	raw := `{"id":"l1","name":"Linux Basics","description":"Shell","baseImage":"ubuntu:22.04",
	"estimatedTime":30,"isActive":true,"createdAt":"2025-03-01T10:00:00Z",
	"setupSteps":[{"id":"s2","stepOrder":2,"title":"B","command":"ls","labId":"l1"},
	{"id":"s1","stepOrder":1,"title":"A","command":"pwd","expectedOutput":"/root","labId":"l1"}]}`

	var lab Lab
	if err := json.Unmarshal([]byte(raw), &lab); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	steps := lab.OrderedSteps()
	if len(steps) != 2 || steps[0].ID != "s1" || steps[1].ID != "s2" {
		t.Fatalf("OrderedSteps = %#v, want s1, s2", steps)
	}
	if lab.SetupSteps[0].ID != "s2" {
		t.Fatalf("OrderedSteps must not reorder the original slice")
	}
	if got := lab.Draft(); got.Name != "Linux Basics" || got.EstimatedTime != 30 {
		t.Fatalf("Draft = %#v", got)
	}
}

func TestParseTime(t *testing.T) {
	cases := []string{"2025-03-01T10:00:00Z", "2025-03-01T10:00:00.123456Z", "2025-03-01 10:00:00", "2025-03-01T10:00:00.123"}
	for _, value := range cases {
		if parseTime(value).IsZero() {
			t.Fatalf("parseTime(%q) returned zero time", value)
		}
	}
	if !parseTime("yesterday").IsZero() {
		t.Fatalf("parseTime(garbage) should be zero")
	}
}

func TestFilterKey(t *testing.T) {
	cases := []struct {
		in   string
		want FilterKey
	}{
		{"", FilterAll},
		{"all", FilterAll},
		{" Active ", FilterActive},
		{"true", FilterActive},
		{"inactive", FilterInactive},
		{"false", FilterInactive},
	}
	for _, tc := range cases {
		got, err := ParseFilterKey(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParseFilterKey(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
	if _, err := ParseFilterKey("maybe"); err == nil {
		t.Fatalf("ParseFilterKey(maybe) returned nil error")
	}

	if FilterAll.Next() != FilterActive || FilterActive.Next() != FilterInactive || FilterInactive.Next() != FilterAll {
		t.Fatalf("Next does not cycle all → active → inactive → all")
	}
	if _, ok := FilterAll.IsActive(); ok {
		t.Fatalf("FilterAll should not send isActivate")
	}
	if v, ok := FilterInactive.IsActive(); !ok || v {
		t.Fatalf("FilterInactive.IsActive = %v, %v; want false, true", v, ok)
	}
}

func TestCloneLabs_Independent(t *testing.T) {
	orig := []Lab{{ID: "a", SetupSteps: []SetupStep{{ID: "s"}}}}
	dup := CloneLabs(orig)
	dup[0].ID = "b"
	dup[0].SetupSteps[0].ID = "t"
	if orig[0].ID != "a" || orig[0].SetupSteps[0].ID != "s" {
		t.Fatalf("CloneLabs shares memory with original: %#v", orig)
	}
	if CloneLabs(nil) != nil {
		t.Fatalf("CloneLabs(nil) should be nil")
	}
}
