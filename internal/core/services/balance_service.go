package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/apperrors"
	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/StayBooks/stay_ledger_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// balanceService derives balances from ledger lines. Nothing here maintains
// a running total: every balance is recomputed from committed lines, so it
// can never drift from source truth.
type balanceService struct {
	chartSvc      portssvc.ChartOfAccountsSvc
	reportingRepo portsrepo.ReportingRepository
}

// NewBalanceService creates a new balance calculator.
func NewBalanceService(reportingRepo portsrepo.ReportingRepository, chartSvc portssvc.ChartOfAccountsSvc) portssvc.BalanceSvc {
	return &balanceService{
		chartSvc:      chartSvc,
		reportingRepo: reportingRepo,
	}
}

var _ portssvc.BalanceSvc = (*balanceService)(nil)

// Balance returns the signed balance of one account over [from, to].
// Implements portssvc.BalanceSvc
func (s *balanceService) Balance(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error) {
	if err := validateRange(from, to); err != nil {
		return decimal.Zero, err
	}

	account, err := s.chartSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	debit, credit, err := s.reportingRepo.SumAccountRange(ctx, accountID, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum postings for account %s: %w", accountID, err)
	}
	return signedNet(debit, credit, account.NormalSide), nil
}

// BalanceByType returns per-account balances for every account of the given
// type with postings in [from, to], ordered by account code for determinism.
func (s *balanceService) BalanceByType(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]domain.AccountBalance, error) {
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %s", apperrors.ErrValidation, accountType)
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.SumByTypeRange(ctx, accountType, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum postings for type %s: %w", accountType, err)
	}

	side := accountType.NormalSide()
	balances := make([]domain.AccountBalance, len(rows))
	for i, row := range rows {
		balances[i] = domain.AccountBalance{
			AccountID: row.AccountID,
			Code:      row.Code,
			Name:      row.AccountName,
			Amount:    signedNet(row.Debit, row.Credit, side),
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Code < balances[j].Code
	})
	return balances, nil
}

// TotalByType returns the summed balance across a whole account type.
func (s *balanceService) TotalByType(ctx context.Context, accountType domain.AccountType, from, to time.Time) (decimal.Decimal, error) {
	balances, err := s.BalanceByType(ctx, accountType, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Amount)
	}
	return total, nil
}

// signedNet folds gross debit/credit totals into a balance along the
// account's normal side.
func signedNet(debit, credit decimal.Decimal, side domain.NormalSide) decimal.Decimal {
	if side == domain.DebitSide {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// validateRange rejects inverted ranges. Zero bounds are open and always valid.
func validateRange(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return fmt.Errorf("%w: from date %s is after to date %s",
			apperrors.ErrValidation, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return nil
}
