package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/apperrors"
	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/StayBooks/stay_ledger_app/internal/core/ports/services"
	"github.com/StayBooks/stay_ledger_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) SumAccountRange(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockReportingRepository) SumByTypeRange(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, accountType, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

// --- Test Suite Setup ---
type BalanceServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockChartSvc      *MockChartService
	service           portssvc.BalanceSvc
	cashAccount       domain.Account
	revenueAccount    domain.Account
	from              time.Time
	to                time.Time
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockChartSvc = new(MockChartService)
	suite.service = services.NewBalanceService(suite.mockReportingRepo, suite.mockChartSvc)

	suite.cashAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		NormalSide:  domain.DebitSide,
		IsActive:    true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "4000",
		Name:        "Room revenue",
		AccountType: domain.Revenue,
		NormalSide:  domain.CreditSide,
		IsActive:    true,
	}
	suite.from = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.to = time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
}

// --- Test Cases ---

func (suite *BalanceServiceTestSuite) TestBalance_CreditNormalAccount() {
	ctx := context.Background()

	suite.mockChartSvc.On("GetAccountByID", ctx, suite.revenueAccount.AccountID).Return(&suite.revenueAccount, nil).Once()
	suite.mockReportingRepo.On("SumAccountRange", ctx, suite.revenueAccount.AccountID, suite.from, suite.to).
		Return(decimal.Zero, decimal.NewFromInt(100000), nil).Once()

	balance, err := suite.service.Balance(ctx, suite.revenueAccount.AccountID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(100000)), "got %s", balance)
}

func (suite *BalanceServiceTestSuite) TestBalance_DebitNormalAccount() {
	ctx := context.Background()

	suite.mockChartSvc.On("GetAccountByID", ctx, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockReportingRepo.On("SumAccountRange", ctx, suite.cashAccount.AccountID, suite.from, suite.to).
		Return(decimal.NewFromInt(150000), decimal.NewFromInt(50000), nil).Once()

	balance, err := suite.service.Balance(ctx, suite.cashAccount.AccountID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(100000)), "got %s", balance)
}

func (suite *BalanceServiceTestSuite) TestBalance_EmptyRangeIsZero() {
	ctx := context.Background()

	suite.mockChartSvc.On("GetAccountByID", ctx, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockReportingRepo.On("SumAccountRange", ctx, suite.cashAccount.AccountID, suite.from, suite.to).
		Return(decimal.Zero, decimal.Zero, nil).Once()

	balance, err := suite.service.Balance(ctx, suite.cashAccount.AccountID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(balance.IsZero())
}

func (suite *BalanceServiceTestSuite) TestBalance_CanGoNegative() {
	ctx := context.Background()

	// Overdrawn cash reads as a negative balance, not an error.
	suite.mockChartSvc.On("GetAccountByID", ctx, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockReportingRepo.On("SumAccountRange", ctx, suite.cashAccount.AccountID, suite.from, suite.to).
		Return(decimal.NewFromInt(20000), decimal.NewFromInt(50000), nil).Once()

	balance, err := suite.service.Balance(ctx, suite.cashAccount.AccountID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(-30000)), "got %s", balance)
}

func (suite *BalanceServiceTestSuite) TestBalance_UnknownAccount() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockChartSvc.On("GetAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Balance(ctx, accountID, suite.from, suite.to)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "SumAccountRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestBalance_InvertedRange() {
	ctx := context.Background()

	_, err := suite.service.Balance(ctx, suite.cashAccount.AccountID, suite.to, suite.from)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockChartSvc.AssertNotCalled(suite.T(), "GetAccountByID", mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestBalanceByType_SortedByCode() {
	ctx := context.Background()

	rows := []domain.TrialBalanceRow{
		{AccountID: uuid.NewString(), Code: "4100", AccountName: "Bar revenue", AccountType: domain.Revenue, Credit: decimal.NewFromInt(30000)},
		{AccountID: uuid.NewString(), Code: "4000", AccountName: "Room revenue", AccountType: domain.Revenue, Credit: decimal.NewFromInt(100000)},
	}
	suite.mockReportingRepo.On("SumByTypeRange", ctx, domain.Revenue, suite.from, suite.to).Return(rows, nil).Once()

	balances, err := suite.service.BalanceByType(ctx, domain.Revenue, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.Require().Len(balances, 2)
	suite.Equal("4000", balances[0].Code)
	suite.Equal("4100", balances[1].Code)
	suite.True(balances[0].Amount.Equal(decimal.NewFromInt(100000)))
	suite.True(balances[1].Amount.Equal(decimal.NewFromInt(30000)))
}

func (suite *BalanceServiceTestSuite) TestBalanceByType_InvalidType() {
	ctx := context.Background()

	_, err := suite.service.BalanceByType(ctx, domain.AccountType("CONTRA"), suite.from, suite.to)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BalanceServiceTestSuite) TestTotalByType_SumsAllAccounts() {
	ctx := context.Background()

	rows := []domain.TrialBalanceRow{
		{AccountID: uuid.NewString(), Code: "4000", AccountName: "Room revenue", AccountType: domain.Revenue, Credit: decimal.NewFromInt(100000)},
		{AccountID: uuid.NewString(), Code: "4100", AccountName: "Bar revenue", AccountType: domain.Revenue, Credit: decimal.NewFromInt(30000), Debit: decimal.NewFromInt(5000)},
	}
	suite.mockReportingRepo.On("SumByTypeRange", ctx, domain.Revenue, suite.from, suite.to).Return(rows, nil).Once()

	total, err := suite.service.TotalByType(ctx, domain.Revenue, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(total.Equal(decimal.NewFromInt(125000)), "got %s", total)
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}

// ledgerLine is a posting against one account on one date, used by the
// in-memory aggregation fake below.
type ledgerLine struct {
	accountID string
	date      time.Time
	debit     decimal.Decimal
	credit    decimal.Decimal
}

// fakeAggregateStore computes the same sums the SQL reporting repository
// would, over a fixed line set. Zero-valued bounds are open.
type fakeAggregateStore struct {
	lines []ledgerLine
}

var _ portsrepo.ReportingRepository = (*fakeAggregateStore)(nil)

func (f *fakeAggregateStore) SumAccountRange(_ context.Context, accountID string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range f.lines {
		if l.accountID != accountID {
			continue
		}
		if !from.IsZero() && l.date.Before(from) {
			continue
		}
		if !to.IsZero() && l.date.After(to) {
			continue
		}
		debit = debit.Add(l.debit)
		credit = credit.Add(l.credit)
	}
	return debit, credit, nil
}

func (f *fakeAggregateStore) SumByTypeRange(context.Context, domain.AccountType, time.Time, time.Time) ([]domain.TrialBalanceRow, error) {
	return nil, nil
}

func (f *fakeAggregateStore) GetTrialBalanceData(context.Context, time.Time) ([]domain.TrialBalanceRow, error) {
	return nil, nil
}

// Splitting a range at any boundary must never change the total: the balance
// over [t0, t2] equals the balance over [t0, t1] plus the one over (t1, t2].
func TestBalance_AdditivityOverAdjacentRanges(t *testing.T) {
	ctx := context.Background()

	cash := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		NormalSide:  domain.DebitSide,
		IsActive:    true,
	}

	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	store := &fakeAggregateStore{lines: []ledgerLine{
		{accountID: cash.AccountID, date: day(1), debit: decimal.NewFromInt(50000), credit: decimal.Zero},
		{accountID: cash.AccountID, date: day(5), debit: decimal.Zero, credit: decimal.NewFromInt(20000)},
		{accountID: cash.AccountID, date: day(10), debit: decimal.NewFromInt(7500), credit: decimal.Zero},
		{accountID: cash.AccountID, date: day(20), debit: decimal.Zero, credit: decimal.NewFromInt(100)},
	}}

	chartSvc := new(MockChartService)
	chartSvc.On("GetAccountByID", mock.Anything, cash.AccountID).Return(&cash, nil)
	svc := services.NewBalanceService(store, chartSvc)

	t0, t2 := day(1), day(31)
	whole, err := svc.Balance(ctx, cash.AccountID, t0, t2)
	if err != nil {
		t.Fatalf("whole range: %v", err)
	}

	for _, cut := range []int{1, 5, 9, 10, 19, 30} {
		t1 := day(cut)
		first, err := svc.Balance(ctx, cash.AccountID, t0, t1)
		if err != nil {
			t.Fatalf("first half at day %d: %v", cut, err)
		}
		second, err := svc.Balance(ctx, cash.AccountID, t1.AddDate(0, 0, 1), t2)
		if err != nil {
			t.Fatalf("second half at day %d: %v", cut, err)
		}
		if sum := first.Add(second); !sum.Equal(whole) {
			t.Errorf("split at day %d: %s + %s = %s, want %s", cut, first, second, sum, whole)
		}
	}
}
