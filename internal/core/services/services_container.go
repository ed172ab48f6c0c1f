package services

import (
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/StayBooks/stay_ledger_app/internal/core/ports/services"
	"github.com/StayBooks/stay_ledger_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Chart of accounts comes first since posting and balances depend on it
	container.Chart = NewAccountService(repos.AccountRepo)

	container.Posting = NewPostingService(
		repos.JournalRepo,
		container.Chart,
		WithMaxPostAttempts(cfg.PostingMaxAttempts),
	)

	container.Balance = NewBalanceService(repos.ReportingRepo, container.Chart)
	container.Reporting = NewReportingService(repos.ReportingRepo, container.Balance)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ChartOfAccountsSvc = (*accountService)(nil)
	_ portssvc.PostingSvc         = (*postingService)(nil)
)
