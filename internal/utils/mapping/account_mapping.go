package mapping

import (
	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	"github.com/StayBooks/stay_ledger_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account.
// NormalSide is derived, not stored.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:   d.AccountID,
		Code:        d.Code,
		Name:        d.Name,
		AccountType: models.AccountType(d.AccountType),
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account.
func ToDomainAccount(m models.Account) domain.Account {
	accountType := domain.AccountType(m.AccountType)
	return domain.Account{
		AccountID:   m.AccountID,
		Code:        m.Code,
		Name:        m.Name,
		AccountType: accountType,
		NormalSide:  accountType.NormalSide(),
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
