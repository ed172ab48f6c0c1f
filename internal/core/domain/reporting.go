package domain

import (
	"github.com/shopspring/decimal"
)

// AccountBalance represents an account with its derived amount in a report or
// balance query. Amounts are signed along the account's normal side.
type AccountBalance struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// TrialBalanceRow represents a single row in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// IncomeStatement reports revenue and expenses over a period.
type IncomeStatement struct {
	Revenue       []AccountBalance `json:"revenue"`
	Expenses      []AccountBalance `json:"expenses"`
	TotalRevenue  decimal.Decimal  `json:"totalRevenue"`
	TotalExpenses decimal.Decimal  `json:"totalExpenses"`
	NetIncome     decimal.Decimal  `json:"netIncome"`
}

// BalanceSheet reports assets, liabilities and equity as of a date.
// Equity includes a derived current-period-earnings row so that
// TotalAssets == TotalLiabilities + TotalEquity holds on a healthy ledger.
type BalanceSheet struct {
	Assets           []AccountBalance `json:"assets"`
	Liabilities      []AccountBalance `json:"liabilities"`
	Equity           []AccountBalance `json:"equity"`
	TotalAssets      decimal.Decimal  `json:"totalAssets"`
	TotalLiabilities decimal.Decimal  `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal  `json:"totalEquity"`
}

// CashFlowStatement reports operating cash movement over a period, direct method.
// Inflows are gross credit postings on revenue accounts, outflows gross debit
// postings on expense accounts.
type CashFlowStatement struct {
	Inflows              []AccountBalance `json:"inflows"`
	Outflows             []AccountBalance `json:"outflows"`
	TotalInflows         decimal.Decimal  `json:"totalInflows"`
	TotalOutflows        decimal.Decimal  `json:"totalOutflows"`
	NetOperatingCashFlow decimal.Decimal  `json:"netOperatingCashFlow"`
}
