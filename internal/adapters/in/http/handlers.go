package http

import (
	"context"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
)

// Use case ports of the HTTP server. Each is satisfied by the handler of
// the same name in the commands or queries package.
type (
	Synchronizer interface {
		Handle(ctx context.Context, command commands.SynchronizeCommand) (commands.SynchronizeResult, error)
	}

	TaskAssigner interface {
		Handle(ctx context.Context, command commands.AssignTaskCommand) error
	}

	AssignmentCanceler interface {
		Handle(ctx context.Context, command commands.CancelAssignmentCommand) error
	}

	TaskTransitioner interface {
		Handle(ctx context.Context, command commands.TransitionTaskCommand) error
	}

	BulkExecutor interface {
		Handle(ctx context.Context, command commands.BulkExecuteCommand) (int, error)
	}

	ProofCompleter interface {
		Handle(ctx context.Context, command commands.CompleteWithProofCommand) (commands.CompleteWithProofResult, error)
	}

	DriverCreator interface {
		Handle(ctx context.Context, command commands.CreateDriverCommand) (commands.CreateDriverResult, error)
	}

	TaskLister interface {
		Handle(ctx context.Context, query queries.ListTasksQuery) ([]queries.TaskView, error)
	}

	DriverQueueLister interface {
		Handle(ctx context.Context, query queries.ListDriverQueueQuery) (queries.DriverQueue, error)
	}

	TaskAuditReader interface {
		Handle(ctx context.Context, query queries.GetTaskAuditQuery) ([]queries.AuditEntryView, error)
	}

	DriverLister interface {
		Handle(ctx context.Context, query queries.GetAllDriversQuery) ([]queries.DriverView, error)
	}

	DriverAuthenticator interface {
		Handle(ctx context.Context, query queries.AuthenticateDriverQuery) (queries.DriverView, error)
	}
)

// Handlers groups the use cases the server exposes.
type Handlers struct {
	Synchronize        Synchronizer
	AssignTask         TaskAssigner
	CancelAssignment   AssignmentCanceler
	TransitionTask     TaskTransitioner
	BulkExecute        BulkExecutor
	CompleteWithProof  ProofCompleter
	CreateDriver       DriverCreator
	ListTasks          TaskLister
	ListDriverQueue    DriverQueueLister
	GetTaskAudit       TaskAuditReader
	GetAllDrivers      DriverLister
	AuthenticateDriver DriverAuthenticator
}
