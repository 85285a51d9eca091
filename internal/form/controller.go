package form

import (
	"context"
	"errors"

	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/state"
)

var (
	// ErrClosed is returned when acting on a dialog that is not open.
	ErrClosed = errors.New("dialog is not open")
	// ErrBusy is returned when a dialog already has a mutation in flight.
	ErrBusy = errors.New("dialog is waiting for the server")
)

// Mutator runs server writes. *state.Engine implements it.
type Mutator interface {
	Create(ctx context.Context, draft labapi.CreateLabRequest) state.Mutation
	Update(ctx context.Context, id string, draft labapi.CreateLabRequest) state.Mutation
	Delete(ctx context.Context, id string) state.Mutation
}

var _ Mutator = (*state.Engine)(nil)

// EditDialog is EditClosed or EditOpen.
type EditDialog interface {
	isEditDialog()
}

// EditClosed is the create/edit dialog when hidden.
type EditClosed struct{}

// EditOpen is the create/edit dialog with its draft. LabID is empty when
// creating.
type EditOpen struct {
	Draft      Draft
	LabID      string
	Errors     map[Field]string
	Submitting bool
	token      uint64
}

// IsCreate reports whether submitting creates a new lab.
func (o EditOpen) IsCreate() bool { return o.LabID == "" }

func (EditClosed) isEditDialog() {}
func (EditOpen) isEditDialog()   {}

// DeleteDialog is DeleteClosed or DeleteOpen.
type DeleteDialog interface {
	isDeleteDialog()
}

// DeleteClosed is the confirmation dialog when hidden.
type DeleteClosed struct{}

// DeleteOpen asks to confirm deleting LabID.
type DeleteOpen struct {
	LabID      string
	Name       string
	Submitting bool
	token      uint64
}

func (DeleteClosed) isDeleteDialog() {}
func (DeleteOpen) isDeleteDialog()   {}

// Submission is a validated request ready to be sent to the server.
type Submission struct {
	Kind    state.MutationKind
	LabID   string
	Request labapi.CreateLabRequest
	token   uint64
}

// Dispatch runs the submission. It blocks until the server answers.
func (s Submission) Dispatch(ctx context.Context, m Mutator) state.Mutation {
	switch s.Kind {
	case state.KindUpdate:
		return m.Update(ctx, s.LabID, s.Request)
	case state.KindDelete:
		return m.Delete(ctx, s.LabID)
	default:
		return m.Create(ctx, s.Request)
	}
}

// Controller holds both dialogs. The zero value has both closed. It is not
// safe for concurrent use; the UI drives it from its update loop.
type Controller struct {
	edit  EditDialog
	del   DeleteDialog
	token uint64
}

// Edit returns the current state of the create/edit dialog.
func (c *Controller) Edit() EditDialog {
	if c.edit == nil {
		return EditClosed{}
	}
	return c.edit
}

// Delete returns the current state of the delete dialog.
func (c *Controller) Delete() DeleteDialog {
	if c.del == nil {
		return DeleteClosed{}
	}
	return c.del
}

// OpenCreate opens the dialog with a blank draft.
func (c *Controller) OpenCreate() {
	c.edit = EditOpen{Draft: NewDraft()}
}

// OpenEdit opens the dialog seeded from lab.
func (c *Controller) OpenEdit(lab labapi.Lab) {
	c.edit = EditOpen{Draft: DraftFromLab(lab), LabID: lab.ID}
}

// SetField updates one draft field. It reports false when the dialog is
// closed or waiting for the server.
func (c *Controller) SetField(f Field, value string) bool {
	open, ok := c.edit.(EditOpen)
	if !ok || open.Submitting {
		return false
	}
	open.Draft = open.Draft.With(f, value)
	if _, bad := open.Errors[f]; bad {
		errs := make(map[Field]string, len(open.Errors))
		for k, v := range open.Errors {
			if k != f {
				errs[k] = v
			}
		}
		open.Errors = errs
	}
	c.edit = open
	return true
}

// CancelEdit closes the dialog and discards the draft.
func (c *Controller) CancelEdit() {
	c.edit = EditClosed{}
}

// SubmitEdit validates the draft. On success the dialog is marked
// submitting and the returned Submission should be dispatched; the dialog
// stays open until ResolveEdit sees the outcome.
func (c *Controller) SubmitEdit() (Submission, error) {
	open, ok := c.edit.(EditOpen)
	if !ok {
		return Submission{}, ErrClosed
	}
	if open.Submitting {
		return Submission{}, ErrBusy
	}
	req, err := Validate(open.Draft)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			open.Errors = verr.Fields
			c.edit = open
		}
		return Submission{}, err
	}

	c.token++
	open.Errors = nil
	open.Submitting = true
	open.token = c.token
	c.edit = open

	sub := Submission{Kind: state.KindCreate, Request: req, token: c.token}
	if !open.IsCreate() {
		sub.Kind = state.KindUpdate
		sub.LabID = open.LabID
	}
	return sub, nil
}

// ResolveEdit applies a mutation outcome. Success closes the dialog; failure
// leaves it open with the draft intact. Outcomes for a dialog that has since
// been cancelled or reopened are ignored.
func (c *Controller) ResolveEdit(sub Submission, m state.Mutation) {
	open, ok := c.edit.(EditOpen)
	if !ok || !open.Submitting || open.token != sub.token {
		return
	}
	if m.Succeeded() {
		c.edit = EditClosed{}
		return
	}
	open.Submitting = false
	c.edit = open
}

// OpenDelete asks for confirmation before deleting lab.
func (c *Controller) OpenDelete(lab labapi.Lab) {
	c.del = DeleteOpen{LabID: lab.ID, Name: lab.Name}
}

// CancelDelete closes the confirmation without calling the server.
func (c *Controller) CancelDelete() {
	c.del = DeleteClosed{}
}

// ConfirmDelete returns the delete submission and marks the dialog
// submitting.
func (c *Controller) ConfirmDelete() (Submission, error) {
	open, ok := c.del.(DeleteOpen)
	if !ok {
		return Submission{}, ErrClosed
	}
	if open.Submitting {
		return Submission{}, ErrBusy
	}
	c.token++
	open.Submitting = true
	open.token = c.token
	c.del = open
	return Submission{Kind: state.KindDelete, LabID: open.LabID, token: c.token}, nil
}

// ResolveDelete closes the confirmation on success only.
func (c *Controller) ResolveDelete(sub Submission, m state.Mutation) {
	open, ok := c.del.(DeleteOpen)
	if !ok || !open.Submitting || open.token != sub.token {
		return
	}
	if m.Succeeded() {
		c.del = DeleteClosed{}
		return
	}
	open.Submitting = false
	c.del = open
}

// CommitEdit submits, dispatches and resolves in one blocking call.
func (c *Controller) CommitEdit(ctx context.Context, m Mutator) (state.Mutation, error) {
	sub, err := c.SubmitEdit()
	if err != nil {
		return state.Mutation{}, err
	}
	result := sub.Dispatch(ctx, m)
	c.ResolveEdit(sub, result)
	return result, result.Err
}

// CommitDelete confirms, dispatches and resolves in one blocking call.
func (c *Controller) CommitDelete(ctx context.Context, m Mutator) (state.Mutation, error) {
	sub, err := c.ConfirmDelete()
	if err != nil {
		return state.Mutation{}, err
	}
	result := sub.Dispatch(ctx, m)
	c.ResolveDelete(sub, result)
	return result, result.Err
}
