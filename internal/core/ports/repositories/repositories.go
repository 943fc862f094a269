package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Every storage driver fills all four from the same underlying store.
type RepositoryProvider struct {
	AccountRepo  AccountRepositoryFacade
	CategoryRepo CategoryRepositoryFacade
	EventRepo    EventReader
	TxManager    TransactionManager
}
