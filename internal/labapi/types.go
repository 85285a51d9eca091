package labapi

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const serverTimestampLayout = "2006-01-02 15:04:05"

// Lab mirrors the lab template payload returned by /lab.
type Lab struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	BaseImage     string      `json:"baseImage"`
	EstimatedTime int         `json:"estimatedTime"`
	IsActive      bool        `json:"isActive"`
	CreatedAt     string      `json:"createdAt"`
	SetupSteps    []SetupStep `json:"setupSteps,omitempty"`
}

// SetupStep is an ordered instruction belonging to a lab. labctl never edits steps.
type SetupStep struct {
	ID             string `json:"id"`
	StepOrder      int    `json:"stepOrder"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Command        string `json:"command"`
	ExpectedOutput string `json:"expectedOutput,omitempty"`
	LabID          string `json:"labId"`
}

// CreateLabRequest is the payload for both create and update.
type CreateLabRequest struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	BaseImage     string `json:"baseImage" yaml:"baseImage"`
	EstimatedTime int    `json:"estimatedTime" yaml:"estimatedTime"`
}

// toggleResponse is the envelope returned by PUT /lab/{id}/toggle-status.
type toggleResponse struct {
	Lab *Lab `json:"lab"`
}

// Draft returns the editable fields of the lab.
func (l Lab) Draft() CreateLabRequest {
	return CreateLabRequest{
		Name:          l.Name,
		Description:   l.Description,
		BaseImage:     l.BaseImage,
		EstimatedTime: l.EstimatedTime,
	}
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (l Lab) ParsedCreatedAt() time.Time {
	return parseTime(l.CreatedAt)
}

// OrderedSteps returns a copy of the setup steps sorted by StepOrder.
func (l Lab) OrderedSteps() []SetupStep {
	if len(l.SetupSteps) == 0 {
		return nil
	}
	steps := make([]SetupStep, len(l.SetupSteps))
	copy(steps, l.SetupSteps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})
	return steps
}

// CloneLabs returns an independent copy of labs, including setup steps.
func CloneLabs(labs []Lab) []Lab {
	if labs == nil {
		return nil
	}
	dup := make([]Lab, len(labs))
	for i, lab := range labs {
		dup[i] = lab
		if lab.SetupSteps != nil {
			dup[i].SetupSteps = append([]SetupStep(nil), lab.SetupSteps...)
		}
	}
	return dup
}

// FilterKey selects which labs the list endpoint returns. It doubles as the
// cache key for list snapshots.
type FilterKey int

const (
	FilterAll FilterKey = iota
	FilterActive
	FilterInactive
)

// String returns the canonical name of the filter.
func (k FilterKey) String() string {
	switch k {
	case FilterActive:
		return "active"
	case FilterInactive:
		return "inactive"
	default:
		return "all"
	}
}

// Label returns the display label used by the UI toolbar.
func (k FilterKey) Label() string {
	switch k {
	case FilterActive:
		return "Active"
	case FilterInactive:
		return "Inactive"
	default:
		return "All"
	}
}

// IsActive reports the value sent as ?isActivate and whether it is sent at all.
func (k FilterKey) IsActive() (value bool, ok bool) {
	switch k {
	case FilterActive:
		return true, true
	case FilterInactive:
		return false, true
	default:
		return false, false
	}
}

// Next cycles All → Active → Inactive → All.
func (k FilterKey) Next() FilterKey {
	switch k {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterInactive
	default:
		return FilterAll
	}
}

// ParseFilterKey accepts all/active/inactive (and true/false/empty).
func ParseFilterKey(value string) (FilterKey, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all", "any":
		return FilterAll, nil
	case "active", "true":
		return FilterActive, nil
	case "inactive", "false":
		return FilterInactive, nil
	default:
		return FilterAll, fmt.Errorf("unknown status filter %q (want all, active or inactive)", value)
	}
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(serverTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
