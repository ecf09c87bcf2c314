package services

import (
	"apartmentqueue/config"
	"apartmentqueue/internal/database"
	"apartmentqueue/internal/repositories"
)

type Service struct {
	Transaction     *TransactionService
	Scheduler       *SchedulerService
	CostIndexLookup *CostIndexLookupService
	Apartment       *ApartmentService
	Application     *ApplicationService
	Lottery         *LotteryService
	Valuation       *ValuationService
	History         *HistoryService
}

func New(
	db database.DB,
	config config.Config,
	repos repositories.Repository,
	publisher EventPublisher,
) Service {
	transactionService := NewTransactionService(db)
	costIndexLookup := NewCostIndexLookupService(
		transactionService,
		repos.CostIndex,
		db.Cache.General,
		config.CostIndexCacheTTL(),
	)

	return Service{
		Transaction:     transactionService,
		Scheduler:       NewSchedulerService(),
		CostIndexLookup: costIndexLookup,
		Apartment:       NewApartmentService(transactionService, repos),
		Application:     NewApplicationService(transactionService, repos, publisher),
		Lottery:         NewLotteryService(transactionService, repos, publisher, config.LotteryMaxPasses),
		Valuation:       NewValuationService(transactionService, repos, costIndexLookup, publisher),
		History:         NewHistoryService(transactionService, repos),
	}
}
