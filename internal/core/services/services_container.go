package services

import (
	"github.com/SscSPs/money_tracker_ledger/internal/core/ports/publishers"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// publisher may be nil, in which case changes are not announced.
func NewServiceContainer(repos portsrepo.RepositoryProvider, publisher publishers.ChangePublisher) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Ledger:   NewLedgerService(repos.TxManager, WithChangePublisher(publisher)),
		Query:    NewQueryService(repos.EventRepo, repos.AccountRepo),
		Account:  NewAccountServiceImpl(repos.AccountRepo),
		Category: NewCategoryService(repos.CategoryRepo),
	}
}
