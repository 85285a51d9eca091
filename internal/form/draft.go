package form

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/labctl/labctl/internal/labapi"
)

// Bounds for estimatedTime, in minutes.
const (
	MinEstimatedTime     = 1
	MaxEstimatedTime     = 600
	DefaultEstimatedTime = 30
)

// Field identifies one input of the edit dialog.
type Field int

const (
	FieldName Field = iota
	FieldDescription
	FieldBaseImage
	FieldEstimatedTime
)

// Fields lists the edit dialog inputs in display order.
var Fields = []Field{FieldName, FieldDescription, FieldBaseImage, FieldEstimatedTime}

// Label returns the human-readable field name.
func (f Field) Label() string {
	switch f {
	case FieldDescription:
		return "Description"
	case FieldBaseImage:
		return "Base image"
	case FieldEstimatedTime:
		return "Estimated time (min)"
	default:
		return "Name"
	}
}

// Draft is the unconfirmed text content of the edit dialog. estimatedTime
// stays text until submission so partially typed numbers survive.
type Draft struct {
	Name          string
	Description   string
	BaseImage     string
	EstimatedTime string
}

// NewDraft returns the blank draft used for "create".
func NewDraft() Draft {
	return Draft{EstimatedTime: strconv.Itoa(DefaultEstimatedTime)}
}

// DraftFromLab seeds a draft from the editable fields of lab.
func DraftFromLab(lab labapi.Lab) Draft {
	return Draft{
		Name:          lab.Name,
		Description:   lab.Description,
		BaseImage:     lab.BaseImage,
		EstimatedTime: strconv.Itoa(lab.EstimatedTime),
	}
}

// Get returns the value of f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldDescription:
		return d.Description
	case FieldBaseImage:
		return d.BaseImage
	case FieldEstimatedTime:
		return d.EstimatedTime
	default:
		return d.Name
	}
}

// With returns a copy of d with f set to value.
func (d Draft) With(f Field, value string) Draft {
	switch f {
	case FieldDescription:
		d.Description = value
	case FieldBaseImage:
		d.BaseImage = value
	case FieldEstimatedTime:
		d.EstimatedTime = value
	default:
		d.Name = value
	}
	return d
}

// ValidationError lists per-field problems. Nothing is dispatched while a
// draft has any.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	fields := make([]Field, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, e.Fields[f])
	}
	return "invalid lab: " + strings.Join(parts, "; ")
}

// Validate converts the draft into a request, trimming text fields.
func Validate(d Draft) (labapi.CreateLabRequest, error) {
	req := labapi.CreateLabRequest{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		BaseImage:   strings.TrimSpace(d.BaseImage),
	}
	problems := requiredText(req)

	minutes, err := strconv.Atoi(strings.TrimSpace(d.EstimatedTime))
	switch {
	case err != nil:
		problems[FieldEstimatedTime] = "estimated time must be a whole number of minutes"
	case minutes < MinEstimatedTime || minutes > MaxEstimatedTime:
		problems[FieldEstimatedTime] = estimatedTimeRange()
	default:
		req.EstimatedTime = minutes
	}

	if len(problems) > 0 {
		return labapi.CreateLabRequest{}, &ValidationError{Fields: problems}
	}
	return req, nil
}

// ValidateRequest applies the same rules to an already typed request.
func ValidateRequest(req labapi.CreateLabRequest) error {
	problems := requiredText(req)
	if req.EstimatedTime < MinEstimatedTime || req.EstimatedTime > MaxEstimatedTime {
		problems[FieldEstimatedTime] = estimatedTimeRange()
	}
	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

func requiredText(req labapi.CreateLabRequest) map[Field]string {
	problems := map[Field]string{}
	if strings.TrimSpace(req.Name) == "" {
		problems[FieldName] = "name is required"
	}
	if strings.TrimSpace(req.Description) == "" {
		problems[FieldDescription] = "description is required"
	}
	if strings.TrimSpace(req.BaseImage) == "" {
		problems[FieldBaseImage] = "base image is required"
	}
	return problems
}

func estimatedTimeRange() string {
	return fmt.Sprintf("estimated time must be between %d and %d minutes", MinEstimatedTime, MaxEstimatedTime)
}
