package accounting

import (
	"fmt"
	"sort"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Effect is one signed balance change implied by an event.
type Effect struct {
	AccountID string
	Delta     decimal.Decimal
}

// Effects computes the balance changes an event implies.
// This is the single rule used for recording, amending and removing events:
//
//	INCOME   source +amount
//	EXPENSE  source -amount
//	TRANSFER source -amount, destination +amount
func Effects(event domain.Event) ([]Effect, error) {
	switch event.Kind {
	case domain.Income:
		return []Effect{{AccountID: event.SourceAccountID, Delta: event.Amount}}, nil
	case domain.Expense:
		return []Effect{{AccountID: event.SourceAccountID, Delta: event.Amount.Neg()}}, nil
	case domain.Transfer:
		if event.DestinationAccountID == "" {
			return nil, fmt.Errorf("transfer %s has no destination account", event.EventID)
		}
		return []Effect{
			{AccountID: event.SourceAccountID, Delta: event.Amount.Neg()},
			{AccountID: event.DestinationAccountID, Delta: event.Amount},
		}, nil
	default:
		return nil, fmt.Errorf("unknown event kind '%s' encountered for event ID %s", event.Kind, event.EventID)
	}
}

// Inverse negates every delta, undoing the given effects.
func Inverse(effects []Effect) []Effect {
	out := make([]Effect, len(effects))
	for i, e := range effects {
		out[i] = Effect{AccountID: e.AccountID, Delta: e.Delta.Neg()}
	}
	return out
}

// Net folds effect lists into one delta per account. Accounts whose deltas cancel are omitted.
func Net(effectSets ...[]Effect) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal)
	for _, set := range effectSets {
		for _, e := range set {
			changes[e.AccountID] = changes[e.AccountID].Add(e.Delta)
		}
	}
	for id, delta := range changes {
		if delta.IsZero() {
			delete(changes, id)
		}
	}
	return changes
}

// SortedAccountIDs returns the keys of a change map in ascending order, the order locks are taken in.
func SortedAccountIDs(changes map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReplayBalances recomputes every account's balance from its opening balance and the given events.
// The second result counts the events touching each account.
func ReplayBalances(accounts []domain.Account, events []domain.Event) (map[string]decimal.Decimal, map[string]int, error) {
	balances := make(map[string]decimal.Decimal, len(accounts))
	counts := make(map[string]int, len(accounts))
	for _, acc := range accounts {
		balances[acc.AccountID] = acc.OpeningBalance
	}
	for _, event := range events {
		effects, err := Effects(event)
		if err != nil {
			return nil, nil, err
		}
		for _, e := range effects {
			balances[e.AccountID] = balances[e.AccountID].Add(e.Delta)
			counts[e.AccountID]++
		}
	}
	return balances, counts, nil
}
