package services

// ServiceContainer holds instances of all the application services.
// It is built once at process start and handed to the handlers.
type ServiceContainer struct {
	Ledger   LedgerSvcFacade
	Query    QuerySvcFacade
	Account  AccountSvcFacade
	Category CategorySvcFacade
}
