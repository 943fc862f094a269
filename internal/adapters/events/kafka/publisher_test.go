package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeChange(t *testing.T) {
	committed := time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)
	change := domain.LedgerChange{
		Op: domain.ChangeRecorded,
		Event: domain.Event{
			EventID:              "evt-1",
			OwnerID:              "owner-7",
			Kind:                 domain.Transfer,
			Amount:               decimal.RequireFromString("40.10"),
			SourceAccountID:      "acc-a",
			DestinationAccountID: "acc-b",
		},
		BalanceChanges: map[string]decimal.Decimal{
			"acc-a": decimal.RequireFromString("-40.10"),
			"acc-b": decimal.RequireFromString("40.10"),
		},
		CommittedAt: committed,
	}

	msg, err := encodeChange(change)
	require.NoError(t, err)

	assert.Equal(t, "owner-7", string(msg.Key))
	assert.Equal(t, committed, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "RECORDED", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "RECORDED", decoded["op"])
	assert.Equal(t, "-40.1", decoded["balanceChanges"].(map[string]any)["acc-a"])
	assert.NotContains(t, decoded, "previous")
}
