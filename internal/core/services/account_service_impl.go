package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountServiceImpl implements the AccountSvcFacade interface
type accountServiceImpl struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	now         func() time.Time
}

// ServiceOption is a functional option for configuring the account service
type ServiceOption func(*accountServiceImpl)

// WithAccountClock overrides the time source for account timestamps.
func WithAccountClock(now func() time.Time) ServiceOption {
	return func(s *accountServiceImpl) {
		s.now = now
	}
}

// NewAccountServiceImpl creates a new account service with the provided options
func NewAccountServiceImpl(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountServiceImpl{
		accountRepo: repo,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure accountServiceImpl implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountServiceImpl)(nil)

func (s *accountServiceImpl) CreateAccount(ctx context.Context, ownerID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("account name must not be empty")
	}
	opening := decimal.Zero
	if req.OpeningBalance != nil {
		opening = *req.OpeningBalance
	}

	now := s.now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		OwnerID:        ownerID,
		Name:           name,
		IconTag:        req.IconTag,
		OpeningBalance: opening,
		Balance:        opening,
		Timestamps:     domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("owner_id", ownerID))
		return nil, err
	}
	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("owner_id", ownerID))
	return &account, nil
}

func (s *accountServiceImpl) GetAccountByID(ctx context.Context, ownerID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, apperrors.NewNotFoundError("account %s", accountID)
	}
	return account, nil
}

func (s *accountServiceImpl) UpdateAccount(ctx context.Context, ownerID string, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("account name must not be empty")
		}
		changed = changed || name != account.Name
		account.Name = name
	}
	if req.IconTag != nil {
		changed = changed || *req.IconTag != account.IconTag
		account.IconTag = *req.IconTag
	}
	if !changed {
		return account, nil
	}

	// updatedAt tracks balance changes; detail edits keep it as is.
	if err := s.accountRepo.UpdateAccountDetails(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

func (s *accountServiceImpl) DeleteAccount(ctx context.Context, ownerID string, accountID string) error {
	if _, err := s.GetAccountByID(ctx, ownerID, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		s.LogFailure(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}
