package services

import (
	"context"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceSvc derives account and group balances from ledger lines.
// Balances are computed on every call, never read from stored totals.
type BalanceSvc interface {
	// Balance returns the signed balance of one account over [from, to],
	// positive along the account's normal side. Zero-valued bounds are open.
	Balance(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error)

	// BalanceByType returns per-account balances for every account of a type
	// with postings in [from, to].
	BalanceByType(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]domain.AccountBalance, error)

	// TotalByType returns the summed balance across a whole account type.
	TotalByType(ctx context.Context, accountType domain.AccountType, from, to time.Time) (decimal.Decimal, error)
}

// ReportingSvc composes balances into financial statements. Every report is
// a pure function of ledger state and its date parameters.
type ReportingSvc interface {
	// IncomeStatement reports revenue, expenses and net income over a period.
	IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatement, error)

	// BalanceSheet reports the accounting equation as of a date. Fails with
	// ErrReconciliation when assets do not equal liabilities plus equity.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error)

	// CashFlowStatement reports operating cash movement, direct method.
	CashFlowStatement(ctx context.Context, from, to time.Time) (*domain.CashFlowStatement, error)

	// TrialBalance reports per-account debit/credit totals as of a date.
	TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)
}
