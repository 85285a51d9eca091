package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/state"
)

type fakeMutator struct {
	calls []string
	fail  error
	last  labapi.CreateLabRequest
}

func (f *fakeMutator) result(kind state.MutationKind, id string) state.Mutation {
	m := state.Mutation{Kind: kind, LabID: id, Status: state.MutationSucceeded}
	if f.fail != nil {
		m.Status = state.MutationFailed
		m.Err = f.fail
	}
	return m
}

func (f *fakeMutator) Create(_ context.Context, draft labapi.CreateLabRequest) state.Mutation {
	f.calls = append(f.calls, "create")
	f.last = draft
	return f.result(state.KindCreate, "")
}

func (f *fakeMutator) Update(_ context.Context, id string, draft labapi.CreateLabRequest) state.Mutation {
	f.calls = append(f.calls, "update "+id)
	f.last = draft
	return f.result(state.KindUpdate, id)
}

func (f *fakeMutator) Delete(_ context.Context, id string) state.Mutation {
	f.calls = append(f.calls, "delete "+id)
	return f.result(state.KindDelete, id)
}

func sampleLab() labapi.Lab {
	return labapi.Lab{ID: "lab-1", Name: "Linux Basics", Description: "Shell", BaseImage: "ubuntu:22.04", EstimatedTime: 45, IsActive: true}
}

func fillDraft(c *Controller) {
	c.SetField(FieldName, "  Docker Intro ")
	c.SetField(FieldDescription, "Containers")
	c.SetField(FieldBaseImage, "docker:dind")
}

func TestValidate_EstimatedTimeBounds(t *testing.T) {
	base := Draft{Name: "n", Description: "d", BaseImage: "img"}
	cases := []struct {
		value string
		ok    bool
	}{
		{"0", false},
		{"1", true},
		{"30", true},
		{"600", true},
		{"601", false},
		{"-5", false},
		{"abc", false},
		{"", false},
		{" 45 ", true},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			req, err := Validate(base.With(FieldEstimatedTime, tc.value))
			if tc.ok {
				require.NoError(t, err)
				assert.GreaterOrEqual(t, req.EstimatedTime, MinEstimatedTime)
				assert.LessOrEqual(t, req.EstimatedTime, MaxEstimatedTime)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, FieldEstimatedTime)
		})
	}
}

func TestValidate_RequiresTextFields(t *testing.T) {
	_, err := Validate(Draft{Name: "   ", EstimatedTime: "30"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, "invalid lab: name is required; description is required; base image is required", err.Error())
}

func TestNewDraft_DefaultsEstimatedTime(t *testing.T) {
	assert.Equal(t, "30", NewDraft().EstimatedTime)
	assert.Equal(t, "45", DraftFromLab(sampleLab()).EstimatedTime)
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(labapi.CreateLabRequest{Name: "n", Description: "d", BaseImage: "i", EstimatedTime: 600}))
	assert.Error(t, ValidateRequest(labapi.CreateLabRequest{Name: "n", Description: "d", BaseImage: "i"}))
}

func TestController_ZeroValueIsClosed(t *testing.T) {
	var c Controller
	assert.Equal(t, EditClosed{}, c.Edit())
	assert.Equal(t, DeleteClosed{}, c.Delete())
	assert.False(t, c.SetField(FieldName, "x"))

	_, err := c.SubmitEdit()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.ConfirmDelete()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestController_InvalidEstimatedTimeNeverDispatches(t *testing.T) {
	var c Controller
	m := &fakeMutator{}
	c.OpenCreate()
	fillDraft(&c)
	c.SetField(FieldEstimatedTime, "0")

	_, err := c.CommitEdit(context.Background(), m)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, m.calls)

	open, ok := c.Edit().(EditOpen)
	require.True(t, ok, "dialog stays open")
	assert.False(t, open.Submitting)
	assert.Contains(t, open.Errors, FieldEstimatedTime)

	// Fixing the field clears its error.
	c.SetField(FieldEstimatedTime, "15")
	open = c.Edit().(EditOpen)
	assert.NotContains(t, open.Errors, FieldEstimatedTime)
}

func TestController_CreateSuccessCloses(t *testing.T) {
	var c Controller
	m := &fakeMutator{}
	c.OpenCreate()
	fillDraft(&c)

	res, err := c.CommitEdit(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Equal(t, []string{"create"}, m.calls)
	assert.Equal(t, "Docker Intro", m.last.Name)
	assert.Equal(t, DefaultEstimatedTime, m.last.EstimatedTime)
	assert.Equal(t, EditClosed{}, c.Edit())
}

func TestController_FailureKeepsDraft(t *testing.T) {
	var c Controller
	m := &fakeMutator{fail: errors.New("boom")}
	c.OpenEdit(sampleLab())
	c.SetField(FieldName, "Linux Advanced")

	_, err := c.CommitEdit(context.Background(), m)
	require.Error(t, err)
	assert.Equal(t, []string{"update lab-1"}, m.calls)

	open, ok := c.Edit().(EditOpen)
	require.True(t, ok)
	assert.False(t, open.Submitting)
	assert.Equal(t, "Linux Advanced", open.Draft.Name)
	assert.Equal(t, "lab-1", open.LabID)
}

func TestController_SubmittingBlocksEditsAndResubmits(t *testing.T) {
	var c Controller
	c.OpenEdit(sampleLab())

	sub, err := c.SubmitEdit()
	require.NoError(t, err)
	assert.Equal(t, state.KindUpdate, sub.Kind)
	assert.Equal(t, "lab-1", sub.LabID)

	assert.False(t, c.SetField(FieldName, "changed"))
	_, err = c.SubmitEdit()
	assert.ErrorIs(t, err, ErrBusy)

	c.ResolveEdit(sub, state.Mutation{Status: state.MutationSucceeded})
	assert.Equal(t, EditClosed{}, c.Edit())
}

func TestController_CancelledSubmissionIsIgnored(t *testing.T) {
	var c Controller
	c.OpenEdit(sampleLab())
	stale, err := c.SubmitEdit()
	require.NoError(t, err)

	c.CancelEdit()
	c.OpenCreate()
	c.ResolveEdit(stale, state.Mutation{Status: state.MutationSucceeded})

	open, ok := c.Edit().(EditOpen)
	require.True(t, ok, "a late result must not close the new dialog")
	assert.True(t, open.IsCreate())
}

func TestController_DeleteFlow(t *testing.T) {
	var c Controller
	m := &fakeMutator{}

	c.OpenDelete(sampleLab())
	c.CancelDelete()
	assert.Equal(t, DeleteClosed{}, c.Delete())
	assert.Empty(t, m.calls)

	c.OpenDelete(sampleLab())
	open := c.Delete().(DeleteOpen)
	assert.Equal(t, "Linux Basics", open.Name)

	_, err := c.CommitDelete(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete lab-1"}, m.calls)
	assert.Equal(t, DeleteClosed{}, c.Delete())
}

func TestController_DeleteFailureKeepsConfirmation(t *testing.T) {
	var c Controller
	m := &fakeMutator{fail: errors.New("boom")}
	c.OpenDelete(sampleLab())

	_, err := c.CommitDelete(context.Background(), m)
	require.Error(t, err)
	open, ok := c.Delete().(DeleteOpen)
	require.True(t, ok)
	assert.False(t, open.Submitting)
}
