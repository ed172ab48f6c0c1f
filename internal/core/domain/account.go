package domain

// AccountType defines the fundamental accounting-equation classification of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every valid account type.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// NormalSide is the debit/credit direction that increases an account's balance.
type NormalSide string

const (
	DebitSide  NormalSide = "DEBIT"
	CreditSide NormalSide = "CREDIT"
)

// NormalSide derives the positive direction from the account type.
// Asset/Expense grow on the debit side, Liability/Equity/Revenue on the credit side.
func (t AccountType) NormalSide() NormalSide {
	switch t {
	case Asset, Expense:
		return DebitSide
	default:
		return CreditSide
	}
}

// Account represents an entry in the chart of accounts.
// This is the primary representation used by services.
type Account struct {
	AccountID   string      `json:"accountID"` // Primary key (UUID)
	Code        string      `json:"code"`      // Display code, unique among all accounts ever created
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	NormalSide  NormalSide  `json:"normalSide"` // Derived from AccountType, never supplied directly
	IsActive    bool        `json:"isActive"`   // Soft-retire flag; accounts with postings are never deleted
	AuditFields
}
