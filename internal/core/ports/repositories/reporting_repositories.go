package repositories

import (
	"context"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository exposes ledger aggregates. All sums are computed over
// posted, non-reversal entries on demand; nothing here is persisted state.
// Zero-valued from/to mean an open bound on that side.
type ReportingRepository interface {
	// SumAccountRange returns the gross debit and credit totals for one
	// account over [from, to].
	SumAccountRange(ctx context.Context, accountID string, from, to time.Time) (debit, credit decimal.Decimal, err error)

	// SumByTypeRange returns per-account gross debit and credit totals for
	// every account of the given type with postings in [from, to].
	SumByTypeRange(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]domain.TrialBalanceRow, error)

	// GetTrialBalanceData returns per-account debit/credit totals across all
	// account types as of a date.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)
}
