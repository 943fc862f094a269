package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
	"github.com/SscSPs/money_tracker_ledger/internal/handlers"
	"github.com/SscSPs/money_tracker_ledger/internal/middleware"
	"github.com/SscSPs/money_tracker_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

const (
	testJWTSecret = "test-secret-key-that-is-long-enough"
	testJWTIssuer = "ledger-test"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, ownerID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, ownerID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, ownerID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, ownerID string, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, ownerID, accountID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, ownerID string, accountID string) error {
	args := m.Called(ctx, ownerID, accountID)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock QueryService ---
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) ListEvents(ctx context.Context, ownerID string, filter domain.EventFilter) (*domain.EventPage, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventPage), args.Error(1)
}

func (m *MockQueryService) GetEvent(ctx context.Context, ownerID string, eventID string) (*domain.EventView, error) {
	args := m.Called(ctx, ownerID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventView), args.Error(1)
}

func (m *MockQueryService) GetAccountsWithBalances(ctx context.Context, ownerID string) ([]domain.Account, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

var _ portssvc.QuerySvcFacade = (*MockQueryService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordEvent(ctx context.Context, draft domain.EventDraft) (*domain.Event, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockLedgerService) AmendEvent(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	args := m.Called(ctx, eventID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockLedgerService) RemoveEvent(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockLedgerService) AuditBalances(ctx context.Context, ownerID string) (*domain.AuditReport, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditReport), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock CategoryService ---
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, ownerID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryService) ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, ownerID string, categoryID string) error {
	args := m.Called(ctx, ownerID, categoryID)
	return args.Error(0)
}

var _ portssvc.CategorySvcFacade = (*MockCategoryService)(nil)

// --- Mock IdempotencyStore ---
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, ownerID, key string) (string, bool, error) {
	args := m.Called(ctx, ownerID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, ownerID, key, eventID string) error {
	args := m.Called(ctx, ownerID, key, eventID)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, ownerID, key string) error {
	args := m.Called(ctx, ownerID, key)
	return args.Error(0)
}

var _ portsrepo.IdempotencyStore = (*MockIdempotencyStore)(nil)

// newTestRouter builds a router with the real auth middleware in front of the /api/v1 group.
func newTestRouter(register func(v1 *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()
	r := gin.New()
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret, testJWTIssuer))
	register(v1)
	return r
}

func generateTestToken(ownerID string) string {
	token, err := utils.GenerateJWT(ownerID, testJWTSecret, time.Hour, testJWTIssuer)
	if err != nil {
		panic(err)
	}
	return token
}
