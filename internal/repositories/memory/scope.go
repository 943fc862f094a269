package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// scope stages writes until Commit. A nil entry in events marks a deletion.
type scope struct {
	store    *Store
	accounts map[string]domain.Account
	events   map[string]*domain.Event
	done     bool
}

var errScopeClosed = apperrors.NewStorageError("atomic scope already closed", nil)

// account returns the staged version of an account, falling back to the committed one.
func (sc *scope) account(id string) (domain.Account, bool) {
	if acc, ok := sc.accounts[id]; ok {
		return acc, true
	}
	sc.store.mu.RLock()
	defer sc.store.mu.RUnlock()
	acc, ok := sc.store.accounts[id]
	return acc, ok
}

func (sc *scope) event(id string) (domain.Event, bool) {
	if e, staged := sc.events[id]; staged {
		if e == nil {
			return domain.Event{}, false
		}
		return *e, true
	}
	sc.store.mu.RLock()
	defer sc.store.mu.RUnlock()
	e, ok := sc.store.events[id]
	return e, ok
}

func (sc *scope) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if sc.done {
		return nil, errScopeClosed
	}
	if err := sc.store.inject(OpLockAccounts); err != nil {
		return nil, err
	}
	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := sc.account(id); ok {
			found[id] = acc
		}
	}
	return found, nil
}

func (sc *scope) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, now time.Time) error {
	if sc.done {
		return errScopeClosed
	}
	if err := sc.store.inject(OpUpdateBalances); err != nil {
		return err
	}
	for id, delta := range balanceChanges {
		acc, ok := sc.account(id)
		if !ok {
			return apperrors.NewNotFoundError("account %s during balance update", id)
		}
		if delta.IsZero() {
			continue
		}
		acc.Balance = acc.Balance.Add(delta)
		acc.UpdatedAt = now
		sc.accounts[id] = acc
	}
	return nil
}

func (sc *scope) FindEventByIDForUpdate(ctx context.Context, eventID string) (*domain.Event, error) {
	if sc.done {
		return nil, errScopeClosed
	}
	e, ok := sc.event(eventID)
	if !ok {
		return nil, apperrors.NewNotFoundError("event %s", eventID)
	}
	return &e, nil
}

func (sc *scope) SaveEvent(ctx context.Context, event domain.Event) error {
	if sc.done {
		return errScopeClosed
	}
	if err := sc.store.inject(OpSaveEvent); err != nil {
		return err
	}
	if _, exists := sc.event(event.EventID); exists {
		return apperrors.ErrDuplicate
	}
	sc.events[event.EventID] = &event
	return nil
}

func (sc *scope) UpdateEvent(ctx context.Context, event domain.Event) error {
	if sc.done {
		return errScopeClosed
	}
	if err := sc.store.inject(OpUpdateEvent); err != nil {
		return err
	}
	if _, exists := sc.event(event.EventID); !exists {
		return apperrors.NewNotFoundError("event %s", event.EventID)
	}
	sc.events[event.EventID] = &event
	return nil
}

func (sc *scope) DeleteEvent(ctx context.Context, eventID string) error {
	if sc.done {
		return errScopeClosed
	}
	if err := sc.store.inject(OpDeleteEvent); err != nil {
		return err
	}
	sc.events[eventID] = nil
	return nil
}

func (sc *scope) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	if sc.done {
		return nil, errScopeClosed
	}
	return sc.store.FindCategoryByID(ctx, categoryID)
}

func (sc *scope) LockAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	if sc.done {
		return nil, errScopeClosed
	}
	sc.store.mu.RLock()
	accounts := sc.store.ownerAccountsLocked(ownerID)
	sc.store.mu.RUnlock()
	for i, acc := range accounts {
		if staged, ok := sc.accounts[acc.AccountID]; ok {
			accounts[i] = staged
		}
	}
	return accounts, nil
}

func (sc *scope) ListEventsByOwner(ctx context.Context, ownerID string) ([]domain.Event, error) {
	if sc.done {
		return nil, errScopeClosed
	}
	sc.store.mu.RLock()
	ids := make([]string, 0, len(sc.store.events))
	for id, e := range sc.store.events {
		if e.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	sc.store.mu.RUnlock()
	for id, e := range sc.events {
		if e != nil && e.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	events := make([]domain.Event, 0, len(ids))
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		if e, ok := sc.event(id); ok {
			events = append(events, e)
		}
	}
	return events, nil
}

func (sc *scope) Commit(ctx context.Context) error {
	if sc.done {
		return errScopeClosed
	}
	if err := sc.store.inject(OpCommit); err != nil {
		return err
	}
	sc.store.mu.Lock()
	for id, acc := range sc.accounts {
		sc.store.accounts[id] = acc
	}
	for id, e := range sc.events {
		if e == nil {
			delete(sc.store.events, id)
			continue
		}
		sc.store.events[id] = *e
	}
	sc.store.mu.Unlock()

	sc.done = true
	sc.store.release()
	return nil
}

func (sc *scope) Rollback(ctx context.Context) error {
	if sc.done {
		return nil
	}
	sc.done = true
	sc.accounts = nil
	sc.events = nil
	sc.store.release()
	return nil
}
