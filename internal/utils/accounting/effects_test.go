package accounting

import (
	"testing"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffects(t *testing.T) {
	tests := []struct {
		name    string
		event   domain.Event
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "income credits source",
			event: domain.Event{Kind: domain.Income, Amount: dec("100"), SourceAccountID: "a"},
			want:  map[string]string{"a": "100"},
		},
		{
			name:  "expense debits source",
			event: domain.Event{Kind: domain.Expense, Amount: dec("12.34"), SourceAccountID: "a"},
			want:  map[string]string{"a": "-12.34"},
		},
		{
			name:  "transfer moves amount",
			event: domain.Event{Kind: domain.Transfer, Amount: dec("40"), SourceAccountID: "a", DestinationAccountID: "b"},
			want:  map[string]string{"a": "-40", "b": "40"},
		},
		{
			name:    "transfer without destination",
			event:   domain.Event{Kind: domain.Transfer, Amount: dec("1"), SourceAccountID: "a"},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			event:   domain.Event{Kind: "GIFT", Amount: dec("1"), SourceAccountID: "a"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effects, err := Effects(tt.event)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got := Net(effects)
			require.Len(t, got, len(tt.want))
			for id, want := range tt.want {
				assert.True(t, got[id].Equal(dec(want)), "account %s: got %s want %s", id, got[id], want)
			}
		})
	}
}

func TestEffects_TransferConservesMoney(t *testing.T) {
	for _, amount := range []string{"0.01", "5", "40", "123456789.987654321"} {
		effects, err := Effects(domain.Event{Kind: domain.Transfer, Amount: dec(amount), SourceAccountID: "a", DestinationAccountID: "b"})
		require.NoError(t, err)
		sum := decimal.Zero
		for _, e := range effects {
			sum = sum.Add(e.Delta)
		}
		assert.True(t, sum.IsZero(), "transfer of %s did not conserve money", amount)
	}
}

func TestInverse_UndoesEffects(t *testing.T) {
	event := domain.Event{Kind: domain.Transfer, Amount: dec("7.5"), SourceAccountID: "a", DestinationAccountID: "b"}
	effects, err := Effects(event)
	require.NoError(t, err)

	assert.Empty(t, Net(effects, Inverse(effects)))
	assert.Len(t, Inverse(nil), 0)
}

func TestNet_AmendAcrossAccounts(t *testing.T) {
	old, err := Effects(domain.Event{Kind: domain.Transfer, Amount: dec("40"), SourceAccountID: "a", DestinationAccountID: "b"})
	require.NoError(t, err)
	updated, err := Effects(domain.Event{Kind: domain.Transfer, Amount: dec("10"), SourceAccountID: "a", DestinationAccountID: "c"})
	require.NoError(t, err)

	changes := Net(Inverse(old), updated)
	assert.True(t, changes["a"].Equal(dec("30")))
	assert.True(t, changes["b"].Equal(dec("-40")))
	assert.True(t, changes["c"].Equal(dec("10")))
	assert.Equal(t, []string{"a", "b", "c"}, SortedAccountIDs(changes))
}

func TestReplayBalances(t *testing.T) {
	accounts := []domain.Account{
		{AccountID: "a", OpeningBalance: dec("100")},
		{AccountID: "b"},
		{AccountID: "idle", OpeningBalance: dec("3")},
	}
	events := []domain.Event{
		{EventID: "1", Kind: domain.Income, Amount: dec("50"), SourceAccountID: "a"},
		{EventID: "2", Kind: domain.Expense, Amount: dec("20"), SourceAccountID: "a"},
		{EventID: "3", Kind: domain.Transfer, Amount: dec("30"), SourceAccountID: "a", DestinationAccountID: "b"},
	}

	balances, counts, err := ReplayBalances(accounts, events)
	require.NoError(t, err)
	assert.True(t, balances["a"].Equal(dec("100")))
	assert.True(t, balances["b"].Equal(dec("30")))
	assert.True(t, balances["idle"].Equal(dec("3")))
	assert.Equal(t, 3, counts["a"])
	assert.Equal(t, 1, counts["b"])
	assert.Equal(t, 0, counts["idle"])

	_, _, err = ReplayBalances(accounts, []domain.Event{{EventID: "x", Kind: "BAD"}})
	assert.Error(t, err)
}
