package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/StayBooks/stay_ledger_app/internal/apperrors"
	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/StayBooks/stay_ledger_app/internal/core/ports/services"
	"github.com/StayBooks/stay_ledger_app/internal/dto"
	"github.com/StayBooks/stay_ledger_app/internal/middleware"
)

// accountService implements the chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new chart-of-accounts service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.ChartOfAccountsSvc {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.ChartOfAccountsSvc = (*accountService)(nil)

// CreateAccount registers a new account after validating the code is unique.
// Implements portssvc.ChartOfAccountsSvc
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %s", apperrors.ErrValidation, req.AccountType)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: account code is required", apperrors.ErrValidation)
	}

	// Codes stay unique among all accounts ever created, retired ones
	// included, so historical line references keep resolving.
	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check account code uniqueness", slog.String("code", code), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account code %s already exists", apperrors.ErrValidation, code)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        req.Name,
		AccountType: req.AccountType,
		NormalSide:  req.AccountType.NormalSide(),
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the race against a concurrent create with the same code.
			return nil, fmt.Errorf("%w: account code %s already exists", apperrors.ErrValidation, code)
		}
		logger.Error("Failed to save account", slog.String("code", code), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", code), slog.String("type", string(account.AccountType)))
	return &account, nil
}

// GetAccountByID retrieves an account by its identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its display code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account with code %s: %w", code, err)
	}
	return account, nil
}

// GetAccountsByCodes retrieves several accounts keyed by code.
func (s *accountService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by codes: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// DeactivateAccount soft-retires an account. There is no hard delete: every
// historical line must keep resolving to its account.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if !account.IsActive {
		// Already retired, nothing to do.
		return nil
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}
