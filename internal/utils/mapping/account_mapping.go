package mapping

import (
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		OwnerID:        d.OwnerID,
		Name:           d.Name,
		IconTag:        d.IconTag,
		OpeningBalance: d.OpeningBalance,
		Balance:        d.Balance,
		Timestamps:     ToModelTimestamps(d.Timestamps),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		OwnerID:        m.OwnerID,
		Name:           m.Name,
		IconTag:        m.IconTag,
		OpeningBalance: m.OpeningBalance,
		Balance:        m.Balance,
		Timestamps:     ToDomainTimestamps(m.Timestamps),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
