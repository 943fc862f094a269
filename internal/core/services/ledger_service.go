package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/core/ports/publishers"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultPublishTimeout = 5 * time.Second

// ledgerService is the ledger engine. It is the only writer of account balances.
type ledgerService struct {
	BaseService
	txManager      portsrepo.TransactionManager
	publisher      publishers.ChangePublisher
	now            func() time.Time
	newID          func() string
	publishTimeout time.Duration
}

// LedgerOption is a functional option for configuring the ledger service
type LedgerOption func(*ledgerService)

// WithChangePublisher announces every committed change through p.
func WithChangePublisher(p publishers.ChangePublisher) LedgerOption {
	return func(s *ledgerService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides the time source used for bookkeeping timestamps.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// WithIDGenerator overrides how new event ids are generated.
func WithIDGenerator(newID func() string) LedgerOption {
	return func(s *ledgerService) {
		s.newID = newID
	}
}

// NewLedgerService creates the ledger engine on top of a transaction manager.
func NewLedgerService(txManager portsrepo.TransactionManager, options ...LedgerOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txManager:      txManager,
		publisher:      publishers.NoopPublisher{},
		now:            time.Now,
		newID:          uuid.NewString,
		publishTimeout: defaultPublishTimeout,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// RecordEvent validates the draft, applies its effect and stores it in one scope.
func (s *ledgerService) RecordEvent(ctx context.Context, draft domain.EventDraft) (*domain.Event, error) {
	now := s.now().UTC()

	event := draft.Event().Normalized()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now
	} else {
		event.OccurredAt = event.OccurredAt.UTC()
	}
	if err := event.Validate(); err != nil {
		s.LogFailure(ctx, err, "Rejected event draft", slog.String("owner_id", draft.OwnerID))
		return nil, err
	}
	effects, err := accounting.Effects(event)
	if err != nil {
		return nil, apperrors.NewValidationError("%v", err)
	}

	event.EventID = s.newID()
	event.CreatedAt = now
	event.UpdatedAt = now
	changes := accounting.Net(effects)

	err = s.withinScope(ctx, func(ctx context.Context, scope portsrepo.AtomicScope) error {
		if err := s.lockAccounts(ctx, scope, event.OwnerID, event.AccountIDs()); err != nil {
			return err
		}
		if err := s.checkCategory(ctx, scope, event); err != nil {
			return err
		}
		if err := scope.UpdateAccountBalances(ctx, changes, now); err != nil {
			return fmt.Errorf("failed to apply balance changes: %w", err)
		}
		if err := scope.SaveEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to save event: %w", err)
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to record event", slog.String("owner_id", event.OwnerID), slog.String("kind", string(event.Kind)))
		return nil, err
	}

	s.publish(ctx, domain.LedgerChange{Op: domain.ChangeRecorded, Event: event, BalanceChanges: changes, CommittedAt: now})
	s.LogInfo(ctx, "Event recorded", slog.String("event_id", event.EventID), slog.String("owner_id", event.OwnerID), slog.String("kind", string(event.Kind)))
	return &event, nil
}

// AmendEvent merges the patch over the stored event and swaps the old effect for the new one.
// An empty patch returns the stored event without writing anything.
func (s *ledgerService) AmendEvent(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	now := s.now().UTC()

	var previous, updated domain.Event
	var changes map[string]decimal.Decimal
	err := s.withinScope(ctx, func(ctx context.Context, scope portsrepo.AtomicScope) error {
		stored, err := scope.FindEventByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		previous = *stored
		if patch.IsEmpty() {
			updated = previous
			return nil
		}

		merged := patch.Apply(previous).Normalized()
		if err := merged.Validate(); err != nil {
			return err
		}
		oldEffects, err := accounting.Effects(previous)
		if err != nil {
			return apperrors.NewInvariantViolation("stored event %s: %v", previous.EventID, err)
		}
		newEffects, err := accounting.Effects(merged)
		if err != nil {
			return apperrors.NewValidationError("%v", err)
		}

		touched := append(previous.AccountIDs(), merged.AccountIDs()...)
		if err := s.lockAccounts(ctx, scope, previous.OwnerID, touched); err != nil {
			return err
		}
		if err := s.checkCategory(ctx, scope, merged); err != nil {
			return err
		}

		changes = accounting.Net(accounting.Inverse(oldEffects), newEffects)
		if len(changes) > 0 {
			if err := scope.UpdateAccountBalances(ctx, changes, now); err != nil {
				return fmt.Errorf("failed to apply balance changes: %w", err)
			}
		}
		merged.UpdatedAt = now
		if err := scope.UpdateEvent(ctx, merged); err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		updated = merged
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to amend event", slog.String("event_id", eventID))
		return nil, err
	}
	if patch.IsEmpty() {
		return &updated, nil
	}

	s.publish(ctx, domain.LedgerChange{Op: domain.ChangeAmended, Event: updated, Previous: &previous, BalanceChanges: changes, CommittedAt: now})
	s.LogInfo(ctx, "Event amended", slog.String("event_id", eventID), slog.Int("accounts_changed", len(changes)))
	return &updated, nil
}

// RemoveEvent reverts the stored effect of an event and deletes it.
func (s *ledgerService) RemoveEvent(ctx context.Context, eventID string) error {
	now := s.now().UTC()

	var removed *domain.Event
	var changes map[string]decimal.Decimal
	err := s.withinScope(ctx, func(ctx context.Context, scope portsrepo.AtomicScope) error {
		stored, err := scope.FindEventByIDForUpdate(ctx, eventID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		effects, err := accounting.Effects(*stored)
		if err != nil {
			return apperrors.NewInvariantViolation("stored event %s: %v", stored.EventID, err)
		}
		if err := s.lockAccounts(ctx, scope, stored.OwnerID, stored.AccountIDs()); err != nil {
			return err
		}

		changes = accounting.Net(accounting.Inverse(effects))
		if err := scope.UpdateAccountBalances(ctx, changes, now); err != nil {
			return fmt.Errorf("failed to revert balance changes: %w", err)
		}
		if err := scope.DeleteEvent(ctx, eventID); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		removed = stored
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to remove event", slog.String("event_id", eventID))
		return err
	}
	if removed == nil {
		s.LogDebug(ctx, "Event already absent, nothing to remove", slog.String("event_id", eventID))
		return nil
	}

	s.publish(ctx, domain.LedgerChange{Op: domain.ChangeRemoved, Event: *removed, BalanceChanges: changes, CommittedAt: now})
	s.LogInfo(ctx, "Event removed", slog.String("event_id", eventID))
	return nil
}

// AuditBalances replays every event of the owner inside a scope so writers cannot interleave.
func (s *ledgerService) AuditBalances(ctx context.Context, ownerID string) (*domain.AuditReport, error) {
	scope, err := s.txManager.BeginAtomic(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit scope: %w", err)
	}
	ctx = context.WithoutCancel(ctx)
	defer s.rollback(ctx, scope)

	accounts, err := scope.LockAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	events, err := scope.ListEventsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	expected, counts, err := accounting.ReplayBalances(accounts, events)
	if err != nil {
		return nil, apperrors.NewInvariantViolation("replaying history of %s: %v", ownerID, err)
	}

	report := &domain.AuditReport{OwnerID: ownerID, CheckedAt: s.now().UTC(), Accounts: make([]domain.BalanceAudit, 0, len(accounts))}
	for _, acc := range accounts {
		report.Accounts = append(report.Accounts, domain.BalanceAudit{
			AccountID:  acc.AccountID,
			Name:       acc.Name,
			Stored:     acc.Balance,
			Expected:   expected[acc.AccountID],
			EventCount: counts[acc.AccountID],
		})
	}

	if drifted := report.Mismatches(); len(drifted) > 0 {
		for _, a := range drifted {
			s.GetLogger(ctx).Error("Account balance drifted from event history",
				slog.String("account_id", a.AccountID),
				slog.String("stored", a.Stored.String()),
				slog.String("expected", a.Expected.String()))
		}
		return report, apperrors.NewInvariantViolation("%d account balance(s) of %s disagree with event history", len(drifted), ownerID)
	}
	return report, nil
}

// withinScope runs fn in a fresh atomic scope and commits when fn succeeds.
// Acquiring the scope honours ctx; once acquired the scope always runs to commit or rollback.
func (s *ledgerService) withinScope(ctx context.Context, fn func(ctx context.Context, scope portsrepo.AtomicScope) error) error {
	scope, err := s.txManager.BeginAtomic(ctx)
	if err != nil {
		return fmt.Errorf("failed to open atomic scope: %w", err)
	}
	ctx = context.WithoutCancel(ctx)
	defer s.rollback(ctx, scope)

	if err := fn(ctx, scope); err != nil {
		return err
	}
	if err := scope.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *ledgerService) rollback(ctx context.Context, scope portsrepo.AtomicScope) {
	if err := scope.Rollback(ctx); err != nil {
		s.LogError(ctx, err, "Failed to roll back atomic scope")
	}
}

// lockAccounts locks the accounts in ascending id order and checks they exist and belong to ownerID.
// Accounts of other owners are reported as missing.
func (s *ledgerService) lockAccounts(ctx context.Context, scope portsrepo.AtomicScope, ownerID string, accountIDs []string) error {
	ids := uniqueSorted(accountIDs)
	accounts, err := scope.FindAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok || acc.OwnerID != ownerID {
			return apperrors.NewNotFoundError("account %s", id)
		}
	}
	return nil
}

// checkCategory resolves an optional category and checks it fits the event kind.
func (s *ledgerService) checkCategory(ctx context.Context, scope portsrepo.AtomicScope, event domain.Event) error {
	if event.CategoryID == "" {
		return nil
	}
	cat, err := scope.FindCategoryByID(ctx, event.CategoryID)
	if errors.Is(err, apperrors.ErrNotFound) || (err == nil && cat.OwnerID != event.OwnerID) {
		return apperrors.NewNotFoundError("category %s", event.CategoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if !cat.Kind.Accepts(event.Kind) {
		return apperrors.NewValidationError("category %q only holds %s events", cat.Name, cat.Kind)
	}
	return nil
}

// publish announces a committed change. Failures are logged and never reach the caller.
func (s *ledgerService) publish(ctx context.Context, change domain.LedgerChange) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishChange(pubCtx, change); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger change",
			slog.String("event_id", change.Event.EventID),
			slog.String("op", string(change.Op)))
	}
}

func uniqueSorted(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	out := make([]string, 0, len(input))
	for _, s := range input {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
