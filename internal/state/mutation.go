package state

import (
	"time"

	"github.com/labctl/labctl/internal/labapi"
)

// MutationKind identifies the server write a mutation performs.
type MutationKind int

const (
	KindCreate MutationKind = iota
	KindUpdate
	KindDelete
	KindToggle
)

func (k MutationKind) String() string {
	switch k {
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindToggle:
		return "toggle"
	default:
		return "create"
	}
}

// MutationStatus is the lifecycle of a single mutation invocation.
type MutationStatus int

const (
	MutationIdle MutationStatus = iota
	MutationPending
	MutationSucceeded
	MutationFailed
)

func (s MutationStatus) String() string {
	switch s {
	case MutationPending:
		return "pending"
	case MutationSucceeded:
		return "succeeded"
	case MutationFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Mutation records one create/update/delete/toggle invocation.
type Mutation struct {
	ID         uint64
	Kind       MutationKind
	LabID      string
	Status     MutationStatus
	Lab        *labapi.Lab // confirmed server state; nil for delete and failures
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the server confirmed the mutation.
func (m Mutation) Succeeded() bool {
	return m.Status == MutationSucceeded
}

type messages struct {
	success string
	failure string
}

var mutationMessages = map[MutationKind]messages{
	KindCreate: {"Lab created successfully", "Failed to create lab"},
	KindUpdate: {"Lab updated successfully", "Failed to update lab"},
	KindDelete: {"Lab deleted successfully", "Failed to delete lab"},
	KindToggle: {"Lab status updated", "Failed to update lab status"},
}
