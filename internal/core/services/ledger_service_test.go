package services_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_tracker_ledger/internal/core/services"
	"github.com/SscSPs/money_tracker_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const owner = "user_1"

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// MockChangePublisher is a mock type for the ChangePublisher interface
type MockChangePublisher struct {
	mock.Mock
}

func (m *MockChangePublisher) PublishChange(ctx context.Context, change domain.LedgerChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

// stepClock advances one second per reading so every write gets a distinct timestamp.
type stepClock struct {
	ticks atomic.Int64
}

func (c *stepClock) Now() time.Time {
	return epoch.Add(time.Duration(c.ticks.Add(1)) * time.Second)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func kindPtr(k domain.EventKind) *domain.EventKind { return &k }

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	publisher *MockChangePublisher
	service   portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.publisher = new(MockChangePublisher)
	suite.publisher.On("PublishChange", mock.Anything, mock.Anything).Return(nil).Maybe()
	clock := &stepClock{}
	suite.service = services.NewLedgerService(suite.store,
		services.WithChangePublisher(suite.publisher),
		services.WithClock(clock.Now),
	)
}

func (suite *LedgerServiceTestSuite) createAccount(id string, opening string) {
	suite.createOwnedAccount(id, owner, opening)
}

func (suite *LedgerServiceTestSuite) createOwnedAccount(id, ownerID, opening string) {
	balance := dec(opening)
	suite.Require().NoError(suite.store.SaveAccount(suite.ctx, domain.Account{
		AccountID:      id,
		OwnerID:        ownerID,
		Name:           "Account " + id,
		OpeningBalance: balance,
		Balance:        balance,
		Timestamps:     domain.Timestamps{CreatedAt: epoch, UpdatedAt: epoch},
	}))
}

func (suite *LedgerServiceTestSuite) createCategory(id string, kind domain.CategoryKind) {
	suite.Require().NoError(suite.store.SaveCategory(suite.ctx, domain.Category{
		CategoryID: id, OwnerID: owner, Name: "Category " + id, Kind: kind,
	}))
}

func (suite *LedgerServiceTestSuite) balance(id string) decimal.Decimal {
	acc, err := suite.store.FindAccountByID(suite.ctx, id)
	suite.Require().NoError(err)
	return acc.Balance
}

func (suite *LedgerServiceTestSuite) assertBalance(id, want string) {
	got := suite.balance(id)
	suite.True(got.Equal(dec(want)), "account %s: balance %s, want %s", id, got, want)
}

func (suite *LedgerServiceTestSuite) assertAuditClean() {
	report, err := suite.service.AuditBalances(suite.ctx, owner)
	suite.Require().NoError(err)
	suite.Empty(report.Mismatches())
}

func (suite *LedgerServiceTestSuite) record(draft domain.EventDraft) *domain.Event {
	if draft.OwnerID == "" {
		draft.OwnerID = owner
	}
	e, err := suite.service.RecordEvent(suite.ctx, draft)
	suite.Require().NoError(err)
	return e
}

func income(acc, amount string) domain.EventDraft {
	return domain.EventDraft{Kind: domain.Income, Amount: dec(amount), SourceAccountID: acc}
}

func expense(acc, amount string) domain.EventDraft {
	return domain.EventDraft{Kind: domain.Expense, Amount: dec(amount), SourceAccountID: acc}
}

func transfer(from, to, amount string) domain.EventDraft {
	return domain.EventDraft{Kind: domain.Transfer, Amount: dec(amount), SourceAccountID: from, DestinationAccountID: to}
}

// --- Scenarios ---

func (suite *LedgerServiceTestSuite) TestRecordIncome() {
	suite.createAccount("A", "0")

	e := suite.record(income("A", "100"))

	suite.assertBalance("A", "100")
	suite.NotEmpty(e.EventID)
	suite.Equal(owner, e.OwnerID)
	suite.False(e.CreatedAt.IsZero())
	suite.Equal(e.CreatedAt, e.UpdatedAt)
	suite.False(e.OccurredAt.IsZero(), "occurredAt defaults to now")
}

func (suite *LedgerServiceTestSuite) TestRecordExpense_DecreasesBalance() {
	suite.createAccount("A", "50")

	suite.record(expense("A", "20.25"))

	suite.assertBalance("A", "29.75")
	suite.assertAuditClean()
}

func (suite *LedgerServiceTestSuite) TestRecordTransfer() {
	suite.createAccount("A", "100")
	suite.createAccount("B", "0")

	suite.record(transfer("A", "B", "40"))

	suite.assertBalance("A", "60")
	suite.assertBalance("B", "40")
}

func (suite *LedgerServiceTestSuite) TestAmendTransferAmount() {
	suite.createAccount("A", "100")
	suite.createAccount("B", "0")
	e := suite.record(transfer("A", "B", "40"))

	updated, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{Amount: decPtr("10")})
	suite.Require().NoError(err)

	suite.assertBalance("A", "90")
	suite.assertBalance("B", "10")
	suite.True(updated.Amount.Equal(dec("10")))
	suite.True(updated.UpdatedAt.After(e.UpdatedAt))
	suite.Equal(e.CreatedAt, updated.CreatedAt)
}

func (suite *LedgerServiceTestSuite) TestRemoveIncome() {
	suite.createAccount("A", "0")
	e := suite.record(income("A", "100"))

	suite.Require().NoError(suite.service.RemoveEvent(suite.ctx, e.EventID))

	suite.assertBalance("A", "0")
	_, err := suite.store.FindEventViewByID(suite.ctx, owner, e.EventID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestRecordTransfer_IdenticalEndpoints() {
	suite.createAccount("A", "100")

	_, err := suite.service.RecordEvent(suite.ctx, domain.EventDraft{OwnerID: owner, Kind: domain.Transfer, Amount: dec("5"), SourceAccountID: "A", DestinationAccountID: "A"})

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.assertBalance("A", "100")
}

func (suite *LedgerServiceTestSuite) TestAmendMissingEvent() {
	_, err := suite.service.AmendEvent(suite.ctx, "nonexistent-id", domain.EventPatch{Amount: decPtr("1")})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Validation and references ---

func (suite *LedgerServiceTestSuite) TestRecord_ValidationFailuresMutateNothing() {
	suite.createAccount("A", "10")
	cases := map[string]domain.EventDraft{
		"zero amount":     {OwnerID: owner, Kind: domain.Income, Amount: decimal.Zero, SourceAccountID: "A"},
		"negative amount": {OwnerID: owner, Kind: domain.Expense, Amount: dec("-3"), SourceAccountID: "A"},
		"unknown kind":    {OwnerID: owner, Kind: "BONUS", Amount: dec("3"), SourceAccountID: "A"},
		"no source":       {OwnerID: owner, Kind: domain.Income, Amount: dec("3")},
		"no destination":  {OwnerID: owner, Kind: domain.Transfer, Amount: dec("3"), SourceAccountID: "A"},
		"no owner":        {Kind: domain.Income, Amount: dec("3"), SourceAccountID: "A"},
	}
	for name, draft := range cases {
		_, err := suite.service.RecordEvent(suite.ctx, draft)
		suite.ErrorIs(err, apperrors.ErrValidation, name)
	}
	suite.assertBalance("A", "10")
	suite.publisher.AssertNotCalled(suite.T(), "PublishChange", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecord_UnknownAccountIsNotFound() {
	suite.createAccount("A", "100")

	_, err := suite.service.RecordEvent(suite.ctx, domain.EventDraft{OwnerID: owner, Kind: domain.Transfer, Amount: dec("5"), SourceAccountID: "A", DestinationAccountID: "ghost"})

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.assertBalance("A", "100")
	page, err := suite.store.ListEventViews(suite.ctx, owner, domain.EventFilter{})
	suite.Require().NoError(err)
	suite.Empty(page.Events)
}

func (suite *LedgerServiceTestSuite) TestRecord_ForeignAccountIsNotFound() {
	suite.createAccount("A", "0")
	suite.createOwnedAccount("theirs", "user_2", "0")

	_, err := suite.service.RecordEvent(suite.ctx, domain.EventDraft{OwnerID: owner, Kind: domain.Transfer, Amount: dec("5"), SourceAccountID: "A", DestinationAccountID: "theirs"})

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.assertBalance("theirs", "0")
}

func (suite *LedgerServiceTestSuite) TestRecord_CategoryChecks() {
	suite.createAccount("A", "0")
	suite.createCategory("salary", domain.IncomeCategory)
	suite.createCategory("food", domain.ExpenseCategory)

	draft := income("A", "10")
	draft.OwnerID = owner
	draft.CategoryID = "food"
	_, err := suite.service.RecordEvent(suite.ctx, draft)
	suite.ErrorIs(err, apperrors.ErrValidation, "an expense category cannot hold income")

	draft.CategoryID = "missing"
	_, err = suite.service.RecordEvent(suite.ctx, draft)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	draft.CategoryID = "salary"
	e, err := suite.service.RecordEvent(suite.ctx, draft)
	suite.Require().NoError(err)
	suite.Equal("salary", e.CategoryID)
	suite.assertBalance("A", "10")
}

func (suite *LedgerServiceTestSuite) TestRecordTransfer_DropsCategory() {
	suite.createAccount("A", "10")
	suite.createAccount("B", "0")
	draft := transfer("A", "B", "4")
	draft.CategoryID = "whatever"

	e := suite.record(draft)

	suite.Empty(e.CategoryID)
}

// --- Amend ---

func (suite *LedgerServiceTestSuite) TestAmend_ChangeSourceAccount() {
	suite.createAccount("A", "0")
	suite.createAccount("C", "0")
	e := suite.record(income("A", "70"))

	_, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{SourceAccountID: strPtr("C")})
	suite.Require().NoError(err)

	suite.assertBalance("A", "0")
	suite.assertBalance("C", "70")
	suite.assertAuditClean()
}

func (suite *LedgerServiceTestSuite) TestAmend_IncomeToTransferDropsCategory() {
	suite.createAccount("A", "0")
	suite.createAccount("B", "0")
	suite.createCategory("salary", domain.IncomeCategory)
	draft := income("A", "30")
	draft.CategoryID = "salary"
	e := suite.record(draft)

	updated, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{
		Kind:                 kindPtr(domain.Transfer),
		DestinationAccountID: strPtr("B"),
	})
	suite.Require().NoError(err)

	suite.Empty(updated.CategoryID)
	suite.assertBalance("A", "-30")
	suite.assertBalance("B", "30")
	suite.assertAuditClean()
}

func (suite *LedgerServiceTestSuite) TestAmend_TransferToExpenseDropsDestination() {
	suite.createAccount("A", "100")
	suite.createAccount("B", "0")
	e := suite.record(transfer("A", "B", "25"))

	updated, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{Kind: kindPtr(domain.Expense)})
	suite.Require().NoError(err)

	suite.Empty(updated.DestinationAccountID)
	suite.assertBalance("A", "75")
	suite.assertBalance("B", "0")
}

func (suite *LedgerServiceTestSuite) TestAmend_InvalidPatchRollsBack() {
	suite.createAccount("A", "100")
	suite.createAccount("B", "0")
	e := suite.record(transfer("A", "B", "40"))

	_, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{DestinationAccountID: strPtr("A")})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{Amount: decPtr("0")})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{DestinationAccountID: strPtr("ghost")})
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.assertBalance("A", "60")
	suite.assertBalance("B", "40")
	view, err := suite.store.FindEventViewByID(suite.ctx, owner, e.EventID)
	suite.Require().NoError(err)
	suite.True(view.Amount.Equal(dec("40")))
	suite.Equal("B", view.DestinationAccountID)
}

func (suite *LedgerServiceTestSuite) TestAmend_EmptyPatchChangesNothing() {
	suite.createAccount("A", "100")
	suite.createAccount("B", "0")
	e := suite.record(transfer("A", "B", "40"))
	suite.publisher.Calls = nil

	updated, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{})
	suite.Require().NoError(err)

	suite.Equal(*e, *updated)
	suite.assertBalance("A", "60")
	suite.assertBalance("B", "40")
	suite.publisher.AssertNotCalled(suite.T(), "PublishChange", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAmend_OccurredAtOnlyLeavesBalances() {
	suite.createAccount("A", "0")
	e := suite.record(income("A", "5"))
	when := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	updated, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{OccurredAt: &when})
	suite.Require().NoError(err)

	suite.True(updated.OccurredAt.Equal(when))
	suite.assertBalance("A", "5")
}

// --- Remove ---

func (suite *LedgerServiceTestSuite) TestRemove_MissingIsNoop() {
	suite.createAccount("A", "100")
	e := suite.record(expense("A", "30"))

	suite.NoError(suite.service.RemoveEvent(suite.ctx, "never-existed"))
	suite.NoError(suite.service.RemoveEvent(suite.ctx, e.EventID))
	suite.NoError(suite.service.RemoveEvent(suite.ctx, e.EventID), "second removal is a no-op")

	suite.assertBalance("A", "100")
}

// --- Properties ---

func (suite *LedgerServiceTestSuite) TestRoundTrip_RecordThenRemoveRestoresBalances() {
	suite.createAccount("A", "12.5")
	suite.createAccount("B", "-3")
	drafts := []domain.EventDraft{
		income("A", "100"),
		expense("B", "0.01"),
		transfer("A", "B", "7.77"),
		transfer("B", "A", "1000"),
	}
	for _, d := range drafts {
		e := suite.record(d)
		suite.Require().NoError(suite.service.RemoveEvent(suite.ctx, e.EventID))
		suite.assertBalance("A", "12.5")
		suite.assertBalance("B", "-3")
	}
}

func (suite *LedgerServiceTestSuite) TestTransferConservesTotal() {
	suite.createAccount("A", "100")
	suite.createAccount("B", "50")
	total := suite.balance("A").Add(suite.balance("B"))

	e := suite.record(transfer("A", "B", "33.33"))
	_, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{Amount: decPtr("99.99")})
	suite.Require().NoError(err)

	suite.True(total.Equal(suite.balance("A").Add(suite.balance("B"))))
}

func (suite *LedgerServiceTestSuite) TestRandomSequenceKeepsInvariant() {
	accounts := []string{"A", "B", "C", "D"}
	for _, id := range accounts {
		suite.createAccount(id, "10")
	}
	rng := rand.New(rand.NewSource(42))
	kinds := []domain.EventKind{domain.Income, domain.Expense, domain.Transfer}
	var live []string

	randomAmount := func() decimal.Decimal {
		return decimal.New(int64(rng.Intn(100000)+1), -2)
	}
	pickPair := func() (string, string) {
		i := rng.Intn(len(accounts))
		j := (i + 1 + rng.Intn(len(accounts)-1)) % len(accounts)
		return accounts[i], accounts[j]
	}

	for step := 0; step < 300; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			src, dst := pickPair()
			draft := domain.EventDraft{OwnerID: owner, Kind: kinds[rng.Intn(3)], Amount: randomAmount(), SourceAccountID: src, DestinationAccountID: dst}
			e := suite.record(draft)
			live = append(live, e.EventID)
		case op == 1:
			src, dst := pickPair()
			amount := randomAmount()
			patch := domain.EventPatch{Amount: &amount}
			if rng.Intn(2) == 0 {
				patch.Kind = kindPtr(kinds[rng.Intn(3)])
				patch.SourceAccountID = &src
				patch.DestinationAccountID = &dst
			}
			_, err := suite.service.AmendEvent(suite.ctx, live[rng.Intn(len(live))], patch)
			suite.Require().NoError(err)
		default:
			idx := rng.Intn(len(live))
			suite.Require().NoError(suite.service.RemoveEvent(suite.ctx, live[idx]))
			live = append(live[:idx], live[idx+1:]...)
		}
	}

	suite.assertAuditClean()
}

// --- Atomicity under induced failure ---

func (suite *LedgerServiceTestSuite) TestInducedFailures_LeaveNoPartialWrites() {
	suite.createAccount("A", "100")
	suite.createAccount("B", "0")
	e := suite.record(transfer("A", "B", "40"))
	boom := errors.New("device unavailable")

	failAt := func(target memory.Op) {
		suite.store.SetFault(func(op memory.Op) error {
			if op == target {
				return boom
			}
			return nil
		})
	}
	suite.publisher.Calls = nil

	failAt(memory.OpSaveEvent)
	_, err := suite.service.RecordEvent(suite.ctx, transfer("A", "B", "5"))
	suite.ErrorIs(err, apperrors.ErrValidation, "owner is required before any storage step")
	draft := transfer("A", "B", "5")
	draft.OwnerID = owner
	_, err = suite.service.RecordEvent(suite.ctx, draft)
	suite.ErrorIs(err, apperrors.ErrStorage)
	suite.ErrorIs(err, boom)

	failAt(memory.OpUpdateEvent)
	_, err = suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{Amount: decPtr("1")})
	suite.ErrorIs(err, apperrors.ErrStorage)

	failAt(memory.OpDeleteEvent)
	suite.ErrorIs(suite.service.RemoveEvent(suite.ctx, e.EventID), apperrors.ErrStorage)

	failAt(memory.OpCommit)
	_, err = suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{Amount: decPtr("2")})
	suite.ErrorIs(err, apperrors.ErrStorage)

	suite.store.SetFault(nil)
	suite.assertBalance("A", "60")
	suite.assertBalance("B", "40")
	suite.assertAuditClean()
	suite.publisher.AssertNotCalled(suite.T(), "PublishChange", mock.Anything, mock.Anything)

	// The store is still usable afterwards
	_, err = suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{Amount: decPtr("10")})
	suite.Require().NoError(err)
	suite.assertBalance("A", "90")
}

func (suite *LedgerServiceTestSuite) TestAudit_DetectsDrift() {
	suite.createAccount("A", "0")
	suite.record(income("A", "10"))

	// Corrupt the balance behind the engine's back
	scope, err := suite.store.BeginAtomic(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().NoError(scope.UpdateAccountBalances(suite.ctx, map[string]decimal.Decimal{"A": dec("1")}, epoch))
	suite.Require().NoError(scope.Commit(suite.ctx))

	report, err := suite.service.AuditBalances(suite.ctx, owner)
	suite.ErrorIs(err, apperrors.ErrInvariantViolation)
	suite.Require().NotNil(report)
	suite.Require().Len(report.Mismatches(), 1)
	drift := report.Mismatches()[0]
	suite.True(drift.Stored.Equal(dec("11")))
	suite.True(drift.Expected.Equal(dec("10")))
	suite.Equal(1, drift.EventCount)
}

// --- Change notifications ---

func (suite *LedgerServiceTestSuite) TestPublishesCommittedChanges() {
	suite.createAccount("A", "0")
	suite.createAccount("B", "0")
	suite.publisher.ExpectedCalls = nil
	var changes []domain.LedgerChange
	suite.publisher.On("PublishChange", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		changes = append(changes, args.Get(1).(domain.LedgerChange))
	}).Return(nil)

	e := suite.record(transfer("A", "B", "8"))
	_, err := suite.service.AmendEvent(suite.ctx, e.EventID, domain.EventPatch{Amount: decPtr("3")})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.service.RemoveEvent(suite.ctx, e.EventID))

	suite.Require().Len(changes, 3)
	suite.Equal(domain.ChangeRecorded, changes[0].Op)
	suite.True(changes[0].BalanceChanges["A"].Equal(dec("-8")))
	suite.Equal(domain.ChangeAmended, changes[1].Op)
	suite.Require().NotNil(changes[1].Previous)
	suite.True(changes[1].Previous.Amount.Equal(dec("8")))
	suite.True(changes[1].BalanceChanges["B"].Equal(dec("-5")))
	suite.Equal(domain.ChangeRemoved, changes[2].Op)
	suite.True(changes[2].BalanceChanges["A"].Equal(dec("3")))
}

func (suite *LedgerServiceTestSuite) TestPublishFailureDoesNotFailOperation() {
	suite.createAccount("A", "0")
	suite.publisher.ExpectedCalls = nil
	suite.publisher.On("PublishChange", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := suite.service.RecordEvent(suite.ctx, domain.EventDraft{OwnerID: owner, Kind: domain.Income, Amount: dec("1"), SourceAccountID: "A"})

	suite.NoError(err)
	suite.assertBalance("A", "1")
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

// --- Concurrency ---

func TestLedgerService_ConcurrentWritersSerialize(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := services.NewLedgerService(store)
	for _, id := range []string{"A", "B"} {
		require.NoError(t, store.SaveAccount(ctx, domain.Account{AccountID: id, OwnerID: owner, Name: id}))
	}

	seed, err := svc.RecordEvent(ctx, domain.EventDraft{OwnerID: owner, Kind: domain.Transfer, Amount: dec("1"), SourceAccountID: "A", DestinationAccountID: "B"})
	require.NoError(t, err)

	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.RecordEvent(ctx, domain.EventDraft{OwnerID: owner, Kind: domain.Income, Amount: dec("1"), SourceAccountID: "A"})
			errs <- err
		}()
		go func(n int) {
			defer wg.Done()
			amount := decimal.NewFromInt(int64(n + 1))
			_, err := svc.AmendEvent(ctx, seed.EventID, domain.EventPatch{Amount: &amount})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	report, err := svc.AuditBalances(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, report.Mismatches())

	a, err := store.FindAccountByID(ctx, "A")
	require.NoError(t, err)
	b, err := store.FindAccountByID(ctx, "B")
	require.NoError(t, err)
	assert.True(t, a.Balance.Add(b.Balance).Equal(decimal.NewFromInt(workers)), "transfers move money, only income adds it")
}

func TestLedgerService_CancelledWhileWaitingMutatesNothing(t *testing.T) {
	store := memory.New()
	svc := services.NewLedgerService(store)
	require.NoError(t, store.SaveAccount(context.Background(), domain.Account{AccountID: "A", OwnerID: owner, Name: "A"}))

	held, err := store.BeginAtomic(context.Background())
	require.NoError(t, err)
	defer held.Rollback(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	_, err = svc.RecordEvent(ctx, domain.EventDraft{OwnerID: owner, Kind: domain.Income, Amount: dec("5"), SourceAccountID: "A"})
	assert.ErrorIs(t, err, apperrors.ErrStorage)

	require.NoError(t, held.Rollback(context.Background()))
	acc, err := store.FindAccountByID(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
}

func TestLedgerService_IDGenerator(t *testing.T) {
	store := memory.New()
	n := 0
	svc := services.NewLedgerService(store, services.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("evt-%03d", n)
	}))
	ctx := context.Background()
	require.NoError(t, store.SaveAccount(ctx, domain.Account{AccountID: "A", OwnerID: owner, Name: "A"}))

	e, err := svc.RecordEvent(ctx, domain.EventDraft{OwnerID: owner, Kind: domain.Income, Amount: dec("1"), SourceAccountID: "A"})
	require.NoError(t, err)
	assert.Equal(t, "evt-001", e.EventID)
}
