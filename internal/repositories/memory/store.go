// Package memory is an in-process ledger store used by tests and by the memory storage driver.
//
// At most one atomic scope is open at a time. Scope writes are staged and swapped into the
// committed maps under the write lock on Commit, so readers observe either the state before
// or after a scope, never a mix.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
)

// Op names a store step that a fault injector can fail.
type Op string

const (
	OpBegin          Op = "begin"
	OpLockAccounts   Op = "lock_accounts"
	OpUpdateBalances Op = "update_balances"
	OpSaveEvent      Op = "save_event"
	OpUpdateEvent    Op = "update_event"
	OpDeleteEvent    Op = "delete_event"
	OpCommit         Op = "commit"
)

// FaultFunc returns a non-nil error to make the named step fail.
type FaultFunc func(op Op) error

// Store keeps accounts, categories and events in maps.
type Store struct {
	mu         sync.RWMutex // guards the committed maps and fault
	writer     chan struct{}
	accounts   map[string]domain.Account
	categories map[string]domain.Category
	events     map[string]domain.Event
	fault      FaultFunc
}

// Option configures a Store.
type Option func(*Store)

// WithFaultInjector installs a hook consulted before every write step.
func WithFaultInjector(f FaultFunc) Option {
	return func(s *Store) {
		s.fault = f
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		writer:     make(chan struct{}, 1),
		accounts:   make(map[string]domain.Account),
		categories: make(map[string]domain.Category),
		events:     make(map[string]domain.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFault replaces the fault injector. nil disables injection.
func (s *Store) SetFault(f FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// Repositories exposes the store through the repository ports.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  s,
		CategoryRepo: s,
		EventRepo:    s,
		TxManager:    s,
	}
}

func (s *Store) inject(op Op) error {
	s.mu.RLock()
	f := s.fault
	s.mu.RUnlock()
	if f == nil {
		return nil
	}
	if err := f(op); err != nil {
		return apperrors.NewStorageError("injected failure at "+string(op), err)
	}
	return nil
}

// acquire takes the single writer slot or gives up when ctx is done.
func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		return apperrors.NewStorageError("timed out waiting for ledger lock", ctx.Err())
	}
}

func (s *Store) release() {
	<-s.writer
}

// BeginAtomic opens a scope, waiting for any other open scope to finish.
func (s *Store) BeginAtomic(ctx context.Context) (portsrepo.AtomicScope, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	if err := s.inject(OpBegin); err != nil {
		s.release()
		return nil, err
	}
	return &scope{
		store:    s,
		accounts: make(map[string]domain.Account),
		events:   make(map[string]*domain.Event),
	}, nil
}

// --- Accounts ---

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError("account %s", accountID)
	}
	return &acc, nil
}

func (s *Store) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerAccountsLocked(ownerID), nil
}

func (s *Store) ownerAccountsLocked(ownerID string) []domain.Account {
	accounts := make([]domain.Account, 0)
	for _, acc := range s.accounts {
		if acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Name != accounts[j].Name {
			return accounts[i].Name < accounts[j].Name
		}
		return accounts[i].AccountID < accounts[j].AccountID
	})
	return accounts
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountID]; exists {
		return apperrors.ErrDuplicate
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) UpdateAccountDetails(ctx context.Context, account domain.Account) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[account.AccountID]
	if !ok {
		return apperrors.NewNotFoundError("account %s", account.AccountID)
	}
	stored.Name = account.Name
	stored.IconTag = account.IconTag
	stored.UpdatedAt = account.UpdatedAt
	s.accounts[account.AccountID] = stored
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return apperrors.NewNotFoundError("account %s", accountID)
	}
	for _, e := range s.events {
		if e.SourceAccountID == accountID || e.DestinationAccountID == accountID {
			return apperrors.NewConflictError("account %s is referenced by event %s", accountID, e.EventID)
		}
	}
	delete(s.accounts, accountID)
	return nil
}

// --- Categories ---

func (s *Store) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cat, ok := s.categories[categoryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("category %s", categoryID)
	}
	return &cat, nil
}

func (s *Store) ListCategoriesByOwner(ctx context.Context, ownerID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cats := make([]domain.Category, 0)
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			cats = append(cats, c)
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].CategoryID < cats[j].CategoryID
	})
	return cats, nil
}

func (s *Store) SaveCategory(ctx context.Context, category domain.Category) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.categories[category.CategoryID]; exists {
		return apperrors.ErrDuplicate
	}
	s.categories[category.CategoryID] = category
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[categoryID]; !ok {
		return apperrors.NewNotFoundError("category %s", categoryID)
	}
	for _, e := range s.events {
		if e.CategoryID == categoryID {
			return apperrors.NewConflictError("category %s is referenced by event %s", categoryID, e.EventID)
		}
	}
	delete(s.categories, categoryID)
	return nil
}
