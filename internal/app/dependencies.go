package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta/internal/config"
	"github.com/moneta-app/moneta/internal/database"
	"github.com/moneta-app/moneta/internal/event_bus"
	"github.com/moneta-app/moneta/internal/events"
	"github.com/moneta-app/moneta/internal/events/kafka"
	"github.com/moneta-app/moneta/internal/utils"
	"github.com/moneta-app/moneta/pkg/audit"
	"github.com/moneta-app/moneta/pkg/budget"
	"github.com/moneta-app/moneta/pkg/fundpool"
	"github.com/moneta-app/moneta/pkg/notification"
	"github.com/moneta-app/moneta/pkg/remittance"
	"github.com/moneta-app/moneta/pkg/transaction"
	"github.com/moneta-app/moneta/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus  *event_bus.EventBus
	Publisher events.Publisher

	UserService user.Service
	UserHandler *user.Handler

	AuditService *audit.ServiceImpl
	AuditHandler *audit.Handler

	FundPoolService *fundpool.ServiceImpl
	FundPoolHandler *fundpool.Handler

	TransactionService *transaction.ServiceImpl
	TransactionHandler *transaction.Handler

	NotificationService *notification.ServiceImpl
	NotificationHandler *notification.Handler

	BudgetService *budget.ServiceImpl
	BudgetHandler *budget.Handler

	RemittanceService *remittance.ServiceImpl
	RemittanceHandler *remittance.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	if cfg.Events.Enabled {
		deps.Publisher = kafka.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
	} else {
		deps.Publisher = &events.NoopPublisher{}
	}
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.AuditService = audit.NewService(audit.NewRepository(db), deps.Publisher)
	deps.AuditHandler = audit.NewHandler(deps.AuditService)

	deps.FundPoolService = fundpool.NewService(fundpool.NewRepository(db), deps.AuditService, database.NewTxRunner(db), deps.EventBus, deps.Clock)
	deps.FundPoolHandler = fundpool.NewHandler(deps.FundPoolService)

	deps.TransactionService = transaction.NewService(transaction.NewRepository(db))
	deps.TransactionHandler = transaction.NewHandler(deps.TransactionService)

	deps.NotificationService = notification.NewService(notification.NewRepository(db))
	deps.NotificationHandler = notification.NewHandler(deps.NotificationService)
	notification.RegisterSubscriptions(deps.EventBus, deps.NotificationService)

	deps.BudgetService = budget.NewService(
		budget.NewRepository(db),
		deps.FundPoolService,
		deps.TransactionService,
		deps.AuditService,
		deps.EventBus,
		deps.Clock,
	)
	deps.BudgetHandler = budget.NewHandler(deps.BudgetService)

	deps.RemittanceService = remittance.NewService(
		remittance.NewRepository(db),
		deps.FundPoolService,
		deps.TransactionService,
		deps.AuditService,
		deps.EventBus,
		deps.Clock,
	)
	deps.RemittanceHandler = remittance.NewHandler(deps.RemittanceService)

	return deps
}
