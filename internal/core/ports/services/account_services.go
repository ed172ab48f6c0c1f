package services

import (
	"context"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	"github.com/StayBooks/stay_ledger_app/internal/dto"
)

// ChartOfAccountsSvc is the registry of accounts and their classification.
type ChartOfAccountsSvc interface {
	// CreateAccount registers a new account. Fails with ErrValidation when
	// the code is already taken by any account, active or retired.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// GetAccountByID resolves an account; ErrNotFound when absent.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode resolves an account by display code; ErrNotFound when absent.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByCodes resolves several accounts keyed by code.
	GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated account list.
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)

	// DeactivateAccount soft-retires an account. Historical postings and
	// balances are unaffected. ErrNotFound when unknown.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}
