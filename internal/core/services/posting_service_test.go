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
	"github.com/StayBooks/stay_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

// Ensure MockJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, entry, lines)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveReversal(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, originalJournalID string) error {
	args := m.Called(ctx, entry, lines, originalJournalID)
	return args.Error(0)
}

func (m *MockJournalRepository) MarkVoided(ctx context.Context, journalID string, reversingJournalID string, userID string, now time.Time) error {
	args := m.Called(ctx, journalID, reversingJournalID, userID, now)
	return args.Error(0)
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var nextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		nextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), nextToken, args.Error(2)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ForEachLineInRange(ctx context.Context, filter portsrepo.LineFilter, fn func(domain.LedgerLine) error) error {
	args := m.Called(ctx, filter, fn)
	return args.Error(0)
}

// --- Mock ChartOfAccountsSvc ---
type MockChartService struct {
	mock.Mock
}

var _ portssvc.ChartOfAccountsSvc = (*MockChartService)(nil)

func (m *MockChartService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockChartService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockChartService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type PostingServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockChartSvc    *MockChartService
	service         portssvc.PostingSvc
	cashAccount     domain.Account
	revenueAccount  domain.Account
	expenseAccount  domain.Account
	userID          string
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockChartSvc = new(MockChartService)
	suite.service = services.NewPostingService(suite.mockJournalRepo, suite.mockChartSvc)

	suite.userID = uuid.NewString()

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
	suite.expenseAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "5000",
		Name:        "Housekeeping supplies",
		AccountType: domain.Expense,
		NormalSide:  domain.DebitSide,
		IsActive:    true,
	}
}

func (suite *PostingServiceTestSuite) balancedRequest() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		Date:          "2025-01-15",
		ReferenceType: domain.RefBooking,
		ReferenceID:   "bk-1042",
		Description:   "Two night stay, room 12",
		Lines: []dto.CreateLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(100000)},
			{AccountCode: "4000", Credit: decimal.NewFromInt(100000)},
		},
	}
}

func (suite *PostingServiceTestSuite) expectAccountResolution() {
	suite.expectAccountResolutionTimes(1)
}

// expectAccountResolutionTimes sets up n resolutions of the balanced request's
// codes. Conflict retries re-resolve the chart on every attempt, so tests that
// exercise the retry loop expect one resolution per attempt.
func (suite *PostingServiceTestSuite) expectAccountResolutionTimes(n int) {
	accountsMap := map[string]domain.Account{
		"1000": suite.cashAccount,
		"4000": suite.revenueAccount,
	}
	suite.mockChartSvc.On("GetAccountsByCodes", mock.Anything, mock.AnythingOfType("[]string")).Return(accountsMap, nil).Times(n)
}

// --- Test Cases ---

func (suite *PostingServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.expectAccountResolution()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).Return(nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.JournalID)
	suite.Equal(domain.Posted, entry.Status)
	suite.Equal(domain.RefBooking, entry.ReferenceType)
	suite.Equal(suite.userID, entry.CreatedBy)
	suite.Require().Len(entry.Lines, 2)
	suite.Equal(suite.cashAccount.AccountID, entry.Lines[0].AccountID)
	suite.True(entry.Lines[0].Debit.Equal(decimal.NewFromInt(100000)))
	suite.True(entry.Lines[1].Credit.Equal(decimal.NewFromInt(100000)))
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPostEntry_Unbalanced() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[1].Credit = decimal.NewFromInt(40000)

	suite.expectAccountResolution()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "entry not balanced: debit 100000 != credit 40000")
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostEntry_TooFewLines() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines = req.Lines[:1]

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "entry must have at least two lines")
	suite.mockChartSvc.AssertNotCalled(suite.T(), "GetAccountsByCodes", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostEntry_TwoSidedLine() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[0].Credit = decimal.NewFromInt(1)

	suite.expectAccountResolution()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "line must be exactly one-sided")
}

func (suite *PostingServiceTestSuite) TestPostEntry_ZeroLine() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[0].Debit = decimal.Zero

	suite.expectAccountResolution()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "line must be exactly one-sided")
}

func (suite *PostingServiceTestSuite) TestPostEntry_UnknownAccount() {
	ctx := context.Background()
	req := suite.balancedRequest()

	// Only the cash account resolves, the revenue code is unknown
	accountsMap := map[string]domain.Account{"1000": suite.cashAccount}
	suite.mockChartSvc.On("GetAccountsByCodes", mock.Anything, mock.AnythingOfType("[]string")).Return(accountsMap, nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "inactive or unknown account 4000")
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostEntry_InactiveAccount() {
	ctx := context.Background()
	req := suite.balancedRequest()

	retired := suite.revenueAccount
	retired.IsActive = false
	accountsMap := map[string]domain.Account{
		"1000": suite.cashAccount,
		"4000": retired,
	}
	suite.mockChartSvc.On("GetAccountsByCodes", mock.Anything, mock.AnythingOfType("[]string")).Return(accountsMap, nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "inactive or unknown account")
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostEntry_UnknownReferenceType() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.ReferenceType = domain.ReferenceType("spa_visit")

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PostingServiceTestSuite) TestPostEntry_RetriesOnConflictThenSucceeds() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.expectAccountResolutionTimes(3)
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).Return(apperrors.ErrConflict).Twice()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).Return(nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.mockJournalRepo.AssertNumberOfCalls(suite.T(), "SaveEntry", 3)
	suite.mockChartSvc.AssertNumberOfCalls(suite.T(), "GetAccountsByCodes", 3)
}

func (suite *PostingServiceTestSuite) TestPostEntry_ConflictBudgetExhausted() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.expectAccountResolutionTimes(3)
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).Return(apperrors.ErrConflict).Times(3)

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalRepo.AssertNumberOfCalls(suite.T(), "SaveEntry", 3)
}

func (suite *PostingServiceTestSuite) TestPostEntry_InvalidDate() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Date = "15/01/2025"

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "invalid entry date")
	suite.mockChartSvc.AssertNotCalled(suite.T(), "GetAccountsByCodes", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostEntry_AccountDeactivatedBetweenAttempts() {
	ctx := context.Background()
	req := suite.balancedRequest()

	// First attempt resolves an active chart but loses the append race. By the
	// retry the revenue account has been retired, so the entry must be
	// rejected rather than posted to a deactivated account.
	activeMap := map[string]domain.Account{
		"1000": suite.cashAccount,
		"4000": suite.revenueAccount,
	}
	retired := suite.revenueAccount
	retired.IsActive = false
	retiredMap := map[string]domain.Account{
		"1000": suite.cashAccount,
		"4000": retired,
	}
	suite.mockChartSvc.On("GetAccountsByCodes", mock.Anything, mock.AnythingOfType("[]string")).Return(activeMap, nil).Once()
	suite.mockChartSvc.On("GetAccountsByCodes", mock.Anything, mock.AnythingOfType("[]string")).Return(retiredMap, nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).Return(apperrors.ErrConflict).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "inactive or unknown account")
	suite.mockJournalRepo.AssertNumberOfCalls(suite.T(), "SaveEntry", 1)
	suite.mockChartSvc.AssertNumberOfCalls(suite.T(), "GetAccountsByCodes", 2)
}

func (suite *PostingServiceTestSuite) TestReverseEntry_Success() {
	ctx := context.Background()
	originalID := uuid.NewString()
	entryDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	original := &domain.JournalEntry{
		JournalID:     originalID,
		EntryDate:     entryDate,
		ReferenceType: domain.RefBooking,
		ReferenceID:   "bk-77",
		Description:   "Room night",
		Status:        domain.Posted,
	}
	originalLines := []domain.JournalLine{
		{LineID: uuid.NewString(), JournalID: originalID, AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromInt(50000)},
		{LineID: uuid.NewString(), JournalID: originalID, AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(50000)},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, originalID).Return(originalLines, nil).Once()
	suite.mockJournalRepo.On("SaveReversal", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), originalID).Return(nil).Once()

	reversing, err := suite.service.ReverseEntry(ctx, originalID, "guest refunded", suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversing)
	suite.NotEqual(originalID, reversing.JournalID)
	suite.Equal(entryDate, reversing.EntryDate) // Reversal keeps the original entry date
	suite.Equal(domain.RefBooking, reversing.ReferenceType)
	suite.Require().NotNil(reversing.OriginalJournalID)
	suite.Equal(originalID, *reversing.OriginalJournalID)
	suite.Require().Len(reversing.Lines, 2)
	// Sides are swapped line for line
	suite.True(reversing.Lines[0].Credit.Equal(decimal.NewFromInt(50000)))
	suite.True(reversing.Lines[0].Debit.IsZero())
	suite.True(reversing.Lines[1].Debit.Equal(decimal.NewFromInt(50000)))
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestReverseEntry_NotFound() {
	ctx := context.Background()
	journalID := uuid.NewString()

	suite.mockJournalRepo.On("FindEntryByID", ctx, journalID).Return(nil, apperrors.ErrNotFound).Once()

	reversing, err := suite.service.ReverseEntry(ctx, journalID, "oops", suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversing)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PostingServiceTestSuite) TestReverseEntry_AlreadyVoided() {
	ctx := context.Background()
	journalID := uuid.NewString()

	voided := &domain.JournalEntry{
		JournalID: journalID,
		Status:    domain.Voided,
	}
	suite.mockJournalRepo.On("FindEntryByID", ctx, journalID).Return(voided, nil).Once()

	reversing, err := suite.service.ReverseEntry(ctx, journalID, "double refund", suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversing)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "already voided")
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestReverseEntry_CannotReverseAReversal() {
	ctx := context.Background()
	journalID := uuid.NewString()
	someOriginal := uuid.NewString()

	reversal := &domain.JournalEntry{
		JournalID:         journalID,
		Status:            domain.Posted,
		OriginalJournalID: &someOriginal,
	}
	suite.mockJournalRepo.On("FindEntryByID", ctx, journalID).Return(reversal, nil).Once()

	reversing, err := suite.service.ReverseEntry(ctx, journalID, "undo the undo", suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversing)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "cannot reverse a reversing entry")
}

func (suite *PostingServiceTestSuite) TestReverseEntry_VoidedBetweenAttempts() {
	ctx := context.Background()
	originalID := uuid.NewString()

	original := &domain.JournalEntry{
		JournalID:     originalID,
		EntryDate:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		ReferenceType: domain.RefBooking,
		Status:        domain.Posted,
	}
	originalLines := []domain.JournalLine{
		{LineID: uuid.NewString(), JournalID: originalID, AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromInt(50000)},
		{LineID: uuid.NewString(), JournalID: originalID, AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(50000)},
	}
	voided := &domain.JournalEntry{
		JournalID: originalID,
		Status:    domain.Voided,
	}

	// A concurrent reversal wins the race: the first attempt conflicts and the
	// retry refetches the entry, now voided, instead of saving a second
	// reversal.
	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, originalID).Return(originalLines, nil).Once()
	suite.mockJournalRepo.On("SaveReversal", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), originalID).Return(apperrors.ErrConflict).Once()
	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(voided, nil).Once()

	reversing, err := suite.service.ReverseEntry(ctx, originalID, "guest refunded", suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversing)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "already voided")
	suite.mockJournalRepo.AssertNumberOfCalls(suite.T(), "SaveReversal", 1)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestListEntries_InvalidRange() {
	ctx := context.Background()

	resp, err := suite.service.ListEntries(ctx, dto.ListEntriesParams{
		From: "2025-02-01",
		To:   "2025-01-01",
	})

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
