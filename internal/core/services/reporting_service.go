package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/apperrors"
	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/StayBooks/stay_ledger_app/internal/core/ports/services"
	"github.com/StayBooks/stay_ledger_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// currentEarningsLabel names the derived equity row that carries revenue
// minus expenses through the report date. An open ledger has no closing
// entries, so the balance sheet reconciles against this augmented equity.
const currentEarningsLabel = "Current period earnings"

// reportingService composes balances into financial statements.
type reportingService struct {
	balanceSvc    portssvc.BalanceSvc
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new report generator.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, balanceSvc portssvc.BalanceSvc) portssvc.ReportingSvc {
	return &reportingService{
		balanceSvc:    balanceSvc,
		reportingRepo: reportingRepo,
	}
}

var _ portssvc.ReportingSvc = (*reportingService)(nil)

// IncomeStatement generates the income statement for [from, to].
// Implements portssvc.ReportingSvc
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	revenue, err := s.balanceSvc.BalanceByType(ctx, domain.Revenue, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue balances: %w", err)
	}
	expenses, err := s.balanceSvc.BalanceByType(ctx, domain.Expense, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute expense balances: %w", err)
	}

	sortBreakdown(revenue)
	sortBreakdown(expenses)

	report := &domain.IncomeStatement{
		Revenue:       revenue,
		Expenses:      expenses,
		TotalRevenue:  sumBalances(revenue),
		TotalExpenses: sumBalances(expenses),
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)

	logger.Debug("Income statement generated",
		slog.Int("revenue_accounts", len(revenue)),
		slog.Int("expense_accounts", len(expenses)))
	return report, nil
}

// BalanceSheet generates the balance sheet as of a date and enforces the
// accounting equation. A mismatch is ledger corruption and is surfaced as
// ErrReconciliation, never returned as an unbalanced report.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// As-of reports run over the open range (-inf, asOf].
	var openFrom time.Time

	assets, err := s.balanceSvc.BalanceByType(ctx, domain.Asset, openFrom, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute asset balances: %w", err)
	}
	liabilities, err := s.balanceSvc.BalanceByType(ctx, domain.Liability, openFrom, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute liability balances: %w", err)
	}
	equity, err := s.balanceSvc.BalanceByType(ctx, domain.Equity, openFrom, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute equity balances: %w", err)
	}

	totalRevenue, err := s.balanceSvc.TotalByType(ctx, domain.Revenue, openFrom, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue total: %w", err)
	}
	totalExpenses, err := s.balanceSvc.TotalByType(ctx, domain.Expense, openFrom, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute expense total: %w", err)
	}

	currentEarnings := totalRevenue.Sub(totalExpenses)
	if !currentEarnings.IsZero() {
		equity = append(equity, domain.AccountBalance{
			Name:   currentEarningsLabel,
			Amount: currentEarnings,
		})
	}

	report := &domain.BalanceSheet{
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		TotalAssets:      sumBalances(assets),
		TotalLiabilities: sumBalances(liabilities),
		TotalEquity:      sumBalances(equity),
	}

	if !report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity)) {
		logger.Error("Balance sheet failed reconciliation",
			slog.String("assets", report.TotalAssets.String()),
			slog.String("liabilities", report.TotalLiabilities.String()),
			slog.String("equity", report.TotalEquity.String()))
		return nil, fmt.Errorf("%w: assets %s != liabilities %s + equity %s",
			apperrors.ErrReconciliation,
			report.TotalAssets.String(),
			report.TotalLiabilities.String(),
			report.TotalEquity.String())
	}

	return report, nil
}

// CashFlowStatement generates the direct-method operating cash flow for
// [from, to]: gross credits on revenue accounts in, gross debits on expense
// accounts out.
func (s *reportingService) CashFlowStatement(ctx context.Context, from, to time.Time) (*domain.CashFlowStatement, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	revenueRows, err := s.reportingRepo.SumByTypeRange(ctx, domain.Revenue, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue postings: %w", err)
	}
	expenseRows, err := s.reportingRepo.SumByTypeRange(ctx, domain.Expense, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expense postings: %w", err)
	}

	inflows := make([]domain.AccountBalance, 0, len(revenueRows))
	for _, row := range revenueRows {
		inflows = append(inflows, domain.AccountBalance{
			AccountID: row.AccountID,
			Code:      row.Code,
			Name:      row.AccountName,
			Amount:    row.Credit,
		})
	}
	outflows := make([]domain.AccountBalance, 0, len(expenseRows))
	for _, row := range expenseRows {
		outflows = append(outflows, domain.AccountBalance{
			AccountID: row.AccountID,
			Code:      row.Code,
			Name:      row.AccountName,
			Amount:    row.Debit,
		})
	}

	sortBreakdown(inflows)
	sortBreakdown(outflows)

	report := &domain.CashFlowStatement{
		Inflows:       inflows,
		Outflows:      outflows,
		TotalInflows:  sumBalances(inflows),
		TotalOutflows: sumBalances(outflows),
	}
	report.NetOperatingCashFlow = report.TotalInflows.Sub(report.TotalOutflows)
	return report, nil
}

// TrialBalance generates per-account debit/credit totals as of a date.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Code < rows[j].Code
	})
	return rows, nil
}

// sortBreakdown orders report lines by descending amount, ties broken by
// ascending account code so identical inputs always render identically.
func sortBreakdown(rows []domain.AccountBalance) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Amount.Equal(rows[j].Amount) {
			return rows[i].Amount.GreaterThan(rows[j].Amount)
		}
		return rows[i].Code < rows[j].Code
	})
}

func sumBalances(rows []domain.AccountBalance) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total
}
