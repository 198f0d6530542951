package cmd

import (
	"log/slog"
	"time"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/auditrepo"
	"dispatch/internal/adapters/out/postgres/vendorfeed"
	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

// syncLeaseTTL bounds how long a crashed replica can block a source.
const syncLeaseTTL = 5 * time.Minute

// CompositionRoot wires use case handlers to their adapters. Optional
// adapters (internal ledger feed, Kafka, Redis) are built by main and
// passed in already configured.
type CompositionRoot struct {
	configs       Config
	gormDB        *gorm.DB
	uowFactory    *postgres.GormUnitOfWorkFactory
	vendorLedger  *vendorfeed.GormVendorLedger
	feeds         []ports.OrderFeed
	proofStorage  ports.ProofStorage
	notifications *notifications.Dispatcher
	logger        *slog.Logger
}

// NewCompositionRoot builds the notification dispatcher over notifier. The
// vendor feed is always present; internalFeed may be nil.
func NewCompositionRoot(
	configs Config,
	gormDB *gorm.DB,
	internalFeed ports.OrderFeed,
	proofStorage ports.ProofStorage,
	notifier ports.Notifier,
	logger *slog.Logger,
) (CompositionRoot, error) {
	templates, err := notifications.LoadTemplates(configs.NotificationTemplates)
	if err != nil {
		return CompositionRoot{}, err
	}
	dispatcher, err := notifications.NewDispatcher(
		notifier,
		auditrepo.NewGormAuditRepository(gormDB),
		templates,
		configs.NotificationTimeout,
		logger,
	)
	if err != nil {
		return CompositionRoot{}, err
	}

	vendorLedger := vendorfeed.NewGormVendorLedger(gormDB)
	feeds := []ports.OrderFeed{vendorLedger}
	if internalFeed != nil {
		feeds = append([]ports.OrderFeed{internalFeed}, feeds...)
	}

	return CompositionRoot{
		configs:       configs,
		gormDB:        gormDB,
		uowFactory:    postgres.NewGormUnitOfWorkFactory(gormDB),
		vendorLedger:  vendorLedger,
		feeds:         feeds,
		proofStorage:  proofStorage,
		notifications: dispatcher,
		logger:        logger,
	}, nil
}

// WaitNotifications blocks until background customer notifications finish.
func (c *CompositionRoot) WaitNotifications() {
	c.notifications.Wait()
}

// Sources lists the intake sources with a configured feed, in sync order.
func (c *CompositionRoot) Sources() []task.Source {
	sources := make([]task.Source, 0, len(c.feeds))
	for _, f := range c.feeds {
		sources = append(sources, f.Source())
	}
	return sources
}

// CreateSyncJob schedules the sync engine over every configured source.
// lease may be nil.
func (c *CompositionRoot) CreateSyncJob(lease ports.Lease) *jobs.SyncJob {
	return jobs.NewSyncJob(
		c.CreateSynchronizeCommandHandler(),
		c.Sources(),
		c.configs.SyncSchedule,
		lease,
		syncLeaseTTL,
		c.logger,
	)
}

func (c *CompositionRoot) taskUoWFactory() commands.TaskUoWFactory {
	return FuncTaskUoWFactory(func() commands.TaskUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) dispatchUoWFactory() commands.DispatchUoWFactory {
	return FuncDispatchUoWFactory{
		create: func() commands.DispatchUoW {
			return c.uowFactory.Create()
		},
		createSerializable: func() commands.DispatchUoW {
			return c.uowFactory.CreateSerializable()
		},
	}
}

func (c *CompositionRoot) driverUoWFactory() commands.DriverUoWFactory {
	return FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateSynchronizeCommandHandler() commands.SynchronizeCommandHandler {
	return commands.NewSynchronizeCommandHandler(c.taskUoWFactory(), c.feeds, c.logger)
}

func (c *CompositionRoot) CreateStageVendorOrderCommandHandler() commands.StageVendorOrderCommandHandler {
	return commands.NewStageVendorOrderCommandHandler(c.vendorLedger)
}

func (c *CompositionRoot) CreateAssignTaskCommandHandler() commands.AssignTaskCommandHandler {
	return commands.NewAssignTaskCommandHandler(c.dispatchUoWFactory())
}

func (c *CompositionRoot) CreateCancelAssignmentCommandHandler() commands.CancelAssignmentCommandHandler {
	return commands.NewCancelAssignmentCommandHandler(c.taskUoWFactory())
}

func (c *CompositionRoot) CreateTransitionTaskCommandHandler() commands.TransitionTaskCommandHandler {
	return commands.NewTransitionTaskCommandHandler(c.taskUoWFactory(), c.notifications)
}

func (c *CompositionRoot) CreateBulkExecuteCommandHandler() commands.BulkExecuteCommandHandler {
	return commands.NewBulkExecuteCommandHandler(c.dispatchUoWFactory())
}

func (c *CompositionRoot) CreateCompleteWithProofCommandHandler() commands.CompleteWithProofCommandHandler {
	return commands.NewCompleteWithProofCommandHandler(
		c.taskUoWFactory(),
		c.proofStorage,
		c.notifications,
		c.configs.StorageTimeout,
	)
}

func (c *CompositionRoot) CreateCreateDriverCommandHandler() commands.CreateDriverCommandHandler {
	return commands.NewCreateDriverCommandHandler(c.driverUoWFactory())
}

func (c *CompositionRoot) CreateListTasksQueryHandler() queries.ListTasksQueryHandler {
	return queries.NewListTasksQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListDriverQueueQueryHandler() queries.ListDriverQueueQueryHandler {
	return queries.NewListDriverQueueQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTaskAuditQueryHandler() queries.GetTaskAuditQueryHandler {
	return queries.NewGetTaskAuditQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAllDriversQueryHandler() queries.GetAllDriversQueryHandler {
	return queries.NewGetAllDriversQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateAuthenticateDriverQueryHandler() queries.AuthenticateDriverQueryHandler {
	return queries.NewAuthenticateDriverQueryHandler(c.gormDB)
}

// CreateHTTPServer wires every use case the HTTP API exposes.
func (c *CompositionRoot) CreateHTTPServer() (*httpin.Server, error) {
	return httpin.NewServer(httpin.Handlers{
		Synchronize:        c.CreateSynchronizeCommandHandler(),
		AssignTask:         c.CreateAssignTaskCommandHandler(),
		CancelAssignment:   c.CreateCancelAssignmentCommandHandler(),
		TransitionTask:     c.CreateTransitionTaskCommandHandler(),
		BulkExecute:        c.CreateBulkExecuteCommandHandler(),
		CompleteWithProof:  c.CreateCompleteWithProofCommandHandler(),
		CreateDriver:       c.CreateCreateDriverCommandHandler(),
		ListTasks:          c.CreateListTasksQueryHandler(),
		ListDriverQueue:    c.CreateListDriverQueueQueryHandler(),
		GetTaskAudit:       c.CreateGetTaskAuditQueryHandler(),
		GetAllDrivers:      c.CreateGetAllDriversQueryHandler(),
		AuthenticateDriver: c.CreateAuthenticateDriverQueryHandler(),
	})
}

type FuncTaskUoWFactory func() commands.TaskUoW

func (f FuncTaskUoWFactory) Create() commands.TaskUoW {
	return f()
}

type FuncDispatchUoWFactory struct {
	create             func() commands.DispatchUoW
	createSerializable func() commands.DispatchUoW
}

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW {
	return f.create()
}

func (f FuncDispatchUoWFactory) CreateSerializable() commands.DispatchUoW {
	return f.createSerializable()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}
