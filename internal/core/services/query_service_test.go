package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/core/services"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
	"github.com/SscSPs/money_tracker_ledger/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repositories()
	container := services.NewServiceContainer(repos, nil)

	checking, err := container.Account.CreateAccount(ctx, owner, dto.CreateAccountRequest{Name: "Checking"})
	require.NoError(t, err)
	savings, err := container.Account.CreateAccount(ctx, owner, dto.CreateAccountRequest{Name: "Savings", IconTag: "piggy"})
	require.NoError(t, err)
	food, err := container.Category.CreateCategory(ctx, owner, dto.CreateCategoryRequest{Name: "Food", Kind: domain.ExpenseCategory})
	require.NoError(t, err)

	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		_, err := container.Ledger.RecordEvent(ctx, domain.EventDraft{
			OwnerID: owner, Kind: domain.Expense, Amount: dec("1"), CategoryID: food.CategoryID,
			SourceAccountID: checking.AccountID, OccurredAt: day.AddDate(0, 0, i%10),
		})
		require.NoError(t, err)
	}
	move, err := container.Ledger.RecordEvent(ctx, domain.EventDraft{
		OwnerID: owner, Kind: domain.Transfer, Amount: dec("5"), Description: "Rainy day",
		SourceAccountID: checking.AccountID, DestinationAccountID: savings.AccountID, OccurredAt: day,
	})
	require.NoError(t, err)

	// Default page size and token
	page, err := container.Query.ListEvents(ctx, owner, domain.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Events, services.DefaultEventPageSize)
	require.NotNil(t, page.NextToken)

	rest, err := container.Query.ListEvents(ctx, owner, domain.EventFilter{NextToken: page.NextToken})
	require.NoError(t, err)
	assert.Len(t, rest.Events, 11)
	assert.Nil(t, rest.NextToken)

	// Ordering is occurredAt then updatedAt, newest first
	all := append(page.Events, rest.Events...)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		ordered := prev.OccurredAt.After(cur.OccurredAt) ||
			(prev.OccurredAt.Equal(cur.OccurredAt) && !prev.UpdatedAt.Before(cur.UpdatedAt))
		assert.True(t, ordered, "events %d and %d out of order", i-1, i)
	}

	// Search and join
	found, err := container.Query.ListEvents(ctx, owner, domain.EventFilter{Search: "rainy"})
	require.NoError(t, err)
	require.Len(t, found.Events, 1)
	assert.Equal(t, "Savings", found.Events[0].DestinationAccountName)
	assert.Equal(t, "piggy", found.Events[0].DestinationAccountIcon)

	view, err := container.Query.GetEvent(ctx, owner, move.EventID)
	require.NoError(t, err)
	assert.Equal(t, "Checking", view.SourceAccountName)

	_, err = container.Query.GetEvent(ctx, "intruder", move.EventID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	accounts, err := container.Query.GetAccountsWithBalances(ctx, owner)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Checking", accounts[0].Name)
	assert.True(t, accounts[0].Balance.Equal(dec("-35")))
	assert.True(t, accounts[1].Balance.Equal(dec("5")))
}

func TestQueryService_RejectsBadFilters(t *testing.T) {
	ctx := context.Background()
	svc := services.NewQueryService(memory.New(), memory.New())

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	_, err := svc.ListEvents(ctx, owner, domain.EventFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	bad := "%%%"
	_, err = svc.ListEvents(ctx, owner, domain.EventFilter{NextToken: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	page, err := svc.ListEvents(ctx, owner, domain.EventFilter{Limit: 10_000})
	require.NoError(t, err)
	assert.Empty(t, page.Events)
}
