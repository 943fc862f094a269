package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangeOp names the ledger mutation that produced a LedgerChange.
type ChangeOp string

const (
	ChangeRecorded ChangeOp = "RECORDED"
	ChangeAmended  ChangeOp = "AMENDED"
	ChangeRemoved  ChangeOp = "REMOVED"
)

// LedgerChange describes one committed ledger mutation.
type LedgerChange struct {
	Op             ChangeOp                   `json:"op"`
	Event          Event                      `json:"event"`              // State after the change; the deleted row for REMOVED
	Previous       *Event                     `json:"previous,omitempty"` // AMENDED only
	BalanceChanges map[string]decimal.Decimal `json:"balanceChanges"`     // Net delta per account
	CommittedAt    time.Time                  `json:"committedAt"`
}

// BalanceAudit compares one account's stored balance against its replayed history.
type BalanceAudit struct {
	AccountID  string          `json:"accountID"`
	Name       string          `json:"name"`
	Stored     decimal.Decimal `json:"stored"`
	Expected   decimal.Decimal `json:"expected"`
	EventCount int             `json:"eventCount"`
}

// Consistent reports whether the stored balance matches the replayed one.
func (a BalanceAudit) Consistent() bool {
	return a.Stored.Equal(a.Expected)
}

// AuditReport is the result of replaying an owner's full event history.
type AuditReport struct {
	OwnerID   string         `json:"ownerID"`
	Accounts  []BalanceAudit `json:"accounts"`
	CheckedAt time.Time      `json:"checkedAt"`
}

// Mismatches returns the accounts whose stored balance drifted.
func (r AuditReport) Mismatches() []BalanceAudit {
	var out []BalanceAudit
	for _, a := range r.Accounts {
		if !a.Consistent() {
			out = append(out, a)
		}
	}
	return out
}
