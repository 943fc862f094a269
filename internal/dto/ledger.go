package dto

import (
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountAuditResponse reports one account of a balance audit.
type AccountAuditResponse struct {
	AccountID  string          `json:"accountID"`
	Name       string          `json:"name"`
	Stored     decimal.Decimal `json:"stored" swaggertype:"string"`
	Expected   decimal.Decimal `json:"expected" swaggertype:"string"`
	EventCount int             `json:"eventCount"`
	Consistent bool            `json:"consistent"`
}

// AuditResponse defines the data returned by a ledger audit.
type AuditResponse struct {
	Consistent bool                   `json:"consistent"`
	CheckedAt  time.Time              `json:"checkedAt"`
	Accounts   []AccountAuditResponse `json:"accounts"`
}

// ToAuditResponse converts an audit report to its DTO.
func ToAuditResponse(r *domain.AuditReport) AuditResponse {
	res := AuditResponse{
		Consistent: len(r.Mismatches()) == 0,
		CheckedAt:  r.CheckedAt,
		Accounts:   make([]AccountAuditResponse, len(r.Accounts)),
	}
	for i, a := range r.Accounts {
		res.Accounts[i] = AccountAuditResponse{
			AccountID:  a.AccountID,
			Name:       a.Name,
			Stored:     a.Stored,
			Expected:   a.Expected,
			EventCount: a.EventCount,
			Consistent: a.Consistent(),
		}
	}
	return res
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
