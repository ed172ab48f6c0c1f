package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/StayBooks/stay_ledger_app/internal/apperrors"
	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/StayBooks/stay_ledger_app/internal/core/ports/services"
	"github.com/StayBooks/stay_ledger_app/internal/dto"
	"github.com/StayBooks/stay_ledger_app/internal/middleware"
	"github.com/StayBooks/stay_ledger_app/internal/utils/accounting"
)

// DefaultMaxPostAttempts bounds the validate-and-append retry loop when the
// store reports write conflicts.
const DefaultMaxPostAttempts = 3

// postingService is the single mutation point of the ledger. Everything else
// reads committed state.
type postingService struct {
	chartSvc    portssvc.ChartOfAccountsSvc
	journalRepo portsrepo.JournalRepositoryFacade
	maxAttempts int
}

// PostingServiceOption configures the posting service.
type PostingServiceOption func(*postingService)

// WithMaxPostAttempts overrides the append retry budget.
func WithMaxPostAttempts(n int) PostingServiceOption {
	return func(s *postingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewPostingService creates a new posting engine.
func NewPostingService(journalRepo portsrepo.JournalRepositoryFacade, chartSvc portssvc.ChartOfAccountsSvc, options ...PostingServiceOption) portssvc.PostingSvc {
	svc := &postingService{
		chartSvc:    chartSvc,
		journalRepo: journalRepo,
		maxAttempts: DefaultMaxPostAttempts,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PostingSvc = (*postingService)(nil)

// PostEntry validates a proposed entry and commits it atomically.
// Implements portssvc.PostingSvc
func (s *postingService) PostEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.ReferenceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown reference type %s", apperrors.ErrValidation, req.ReferenceType)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}
	if len(req.Lines) < 2 {
		return nil, fmt.Errorf("%w: entry must have at least two lines", apperrors.ErrValidation)
	}

	entryDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid entry date %q, use YYYY-MM-DD", apperrors.ErrValidation, req.Date)
	}

	codes := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		codes = append(codes, line.AccountCode)
	}

	now := time.Now().UTC()
	journalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	entry := domain.JournalEntry{
		JournalID:     journalID,
		EntryDate:     entryDate,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		Status:        domain.Posted,
		AuditFields:   audit,
	}

	// Each attempt re-runs the whole validate-and-append sequence, so a
	// conflicted retry sees the chart as it stands now, not as it stood on
	// the first attempt.
	var lines []domain.JournalLine
	if err := s.runWithRetry(ctx, logger, func() error {
		accountsMap, err := s.chartSvc.GetAccountsByCodes(ctx, uniqueStrings(codes))
		if err != nil {
			logger.Error("Failed to resolve accounts for posting", slog.String("error", err.Error()))
			return fmt.Errorf("failed to resolve accounts: %w", err)
		}

		lines = make([]domain.JournalLine, len(req.Lines))
		for i, lineReq := range req.Lines {
			acc, found := accountsMap[lineReq.AccountCode]
			if !found {
				return fmt.Errorf("%w: inactive or unknown account %s", apperrors.ErrValidation, lineReq.AccountCode)
			}
			if !acc.IsActive {
				return fmt.Errorf("%w: inactive or unknown account %s", apperrors.ErrValidation, acc.AccountID)
			}
			lines[i] = domain.JournalLine{
				LineID:      uuid.NewString(),
				JournalID:   journalID,
				AccountID:   acc.AccountID,
				Debit:       lineReq.Debit,
				Credit:      lineReq.Credit,
				Memo:        lineReq.Memo,
				AuditFields: audit,
			}
		}

		// Double-entry check: one-sided lines and exact debit/credit equality.
		if err := accounting.ValidateEntryBalance(lines); err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}

		return s.appendEntry(ctx, logger, func() error {
			return s.journalRepo.SaveEntry(ctx, entry, lines)
		})
	}); err != nil {
		return nil, err
	}

	logger.Info("Journal entry posted",
		slog.String("journal_id", entry.JournalID),
		slog.String("reference_type", string(entry.ReferenceType)),
		slog.Int("line_count", len(lines)))
	entry.Lines = lines
	return &entry, nil
}

// runWithRetry runs one full validate-and-append attempt, retrying on
// transient write conflicts up to the configured budget. Any other error
// aborts immediately and is returned as the attempt produced it.
func (s *postingService) runWithRetry(ctx context.Context, logger *slog.Logger, attempt func() error) error {
	var lastErr error
	for n := 1; n <= s.maxAttempts; n++ {
		lastErr = attempt()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, apperrors.ErrConflict) {
			return lastErr
		}
		logger.Warn("Write conflict on ledger append, retrying",
			slog.Int("attempt", n),
			slog.Int("max_attempts", s.maxAttempts))
	}
	return fmt.Errorf("%w: ledger append failed after %d attempts: %v", apperrors.ErrConflict, s.maxAttempts, lastErr)
}

// appendEntry runs the atomic append. The append is never left half-applied:
// the store either commits the whole entry or nothing. Conflicts pass through
// untouched for the retry loop; anything else is a storage failure.
func (s *postingService) appendEntry(ctx context.Context, logger *slog.Logger, append func() error) error {
	err := append()
	if err == nil || errors.Is(err, apperrors.ErrConflict) {
		return err
	}
	logger.Error("Failed to append journal entry", slog.String("error", err.Error()))
	return fmt.Errorf("failed to append journal entry: %w", err)
}

// ReverseEntry posts a mirror entry and voids the original.
// Implements portssvc.PostingSvc
func (s *postingService) ReverseEntry(ctx context.Context, journalID string, reason string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return nil, fmt.Errorf("%w: reversal reason is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	newJournalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	// Each attempt re-reads the original, so a conflicted retry sees a
	// concurrent reversal as already-voided instead of racing it again.
	var reversingEntry domain.JournalEntry
	var reversingLines []domain.JournalLine
	if err := s.runWithRetry(ctx, logger, func() error {
		original, err := s.journalRepo.FindEntryByID(ctx, journalID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				logger.Error("Failed to fetch entry for reversal", slog.String("journal_id", journalID), slog.String("error", err.Error()))
			}
			return fmt.Errorf("failed to retrieve entry %s: %w", journalID, err)
		}
		if original.Status != domain.Posted {
			return fmt.Errorf("%w: entry %s is already voided", apperrors.ErrValidation, journalID)
		}
		if original.IsReversal() {
			return fmt.Errorf("%w: cannot reverse a reversing entry", apperrors.ErrValidation)
		}

		originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, journalID)
		if err != nil {
			logger.Error("Failed to fetch lines for reversal", slog.String("journal_id", journalID), slog.String("error", err.Error()))
			return fmt.Errorf("failed to retrieve lines for entry %s: %w", journalID, err)
		}

		// Swap each line's sides. The reversing entry keeps the original entry
		// date so every range containing the original also contains its reversal.
		reversingLines = make([]domain.JournalLine, len(originalLines))
		for i, origLine := range originalLines {
			reversingLines[i] = domain.JournalLine{
				LineID:      uuid.NewString(),
				JournalID:   newJournalID,
				AccountID:   origLine.AccountID,
				Debit:       origLine.Credit,
				Credit:      origLine.Debit,
				Memo:        origLine.Memo,
				AuditFields: audit,
			}
		}

		if err := accounting.ValidateEntryBalance(reversingLines); err != nil {
			// A committed entry can only produce unbalanced reversal lines when
			// the stored data is corrupted.
			logger.Error("Stored entry produced invalid reversal lines", slog.String("journal_id", journalID), slog.String("error", err.Error()))
			return fmt.Errorf("%w: %s", apperrors.ErrInternal, err.Error())
		}

		reversingEntry = domain.JournalEntry{
			JournalID:         newJournalID,
			EntryDate:         original.EntryDate,
			ReferenceType:     original.ReferenceType,
			ReferenceID:       original.ReferenceID,
			Description:       fmt.Sprintf("Reversal of %s: %s", original.JournalID, reason),
			Status:            domain.Posted,
			OriginalJournalID: &original.JournalID,
			AuditFields:       audit,
		}

		return s.appendEntry(ctx, logger, func() error {
			return s.journalRepo.SaveReversal(ctx, reversingEntry, reversingLines, original.JournalID)
		})
	}); err != nil {
		return nil, err
	}

	logger.Info("Journal entry reversed",
		slog.String("original_journal_id", journalID),
		slog.String("reversing_journal_id", newJournalID))
	reversingEntry.Lines = reversingLines
	return &reversingEntry, nil
}

// GetEntryByID retrieves a committed entry with its lines.
func (s *postingService) GetEntryByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", journalID, err)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", journalID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a keyset-paginated page of entries.
func (s *postingService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	repoParams := portsrepo.ListEntriesParams{
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	if repoParams.Limit <= 0 {
		repoParams.Limit = 20
	}

	if params.ReferenceType != "" {
		refType := domain.ReferenceType(params.ReferenceType)
		if !refType.IsValid() {
			return nil, fmt.Errorf("%w: unknown reference type %s", apperrors.ErrValidation, params.ReferenceType)
		}
		repoParams.ReferenceType = refType
	}

	var err error
	if repoParams.From, repoParams.To, err = parseRange(params.From, params.To); err != nil {
		return nil, err
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, repoParams)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	resp := &dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToEntryResponse(&entries[i])
	}
	return resp, nil
}

// ListLinesByAccount collects an account statement over a range, voided
// lines included for audit.
func (s *postingService) ListLinesByAccount(ctx context.Context, accountID string, filter portsrepo.LineFilter) ([]domain.LedgerLine, error) {
	if _, err := s.chartSvc.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	filter.AccountID = accountID
	filter.IncludeVoided = true

	lines := make([]domain.LedgerLine, 0)
	err := s.journalRepo.ForEachLineInRange(ctx, filter, func(line domain.LedgerLine) error {
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan lines for account %s: %w", accountID, err)
	}
	return lines, nil
}

// parseRange parses optional YYYY-MM-DD bounds and rejects inverted ranges.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			return from, to, fmt.Errorf("%w: invalid from date %q", apperrors.ErrValidation, fromStr)
		}
	}
	if toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			return from, to, fmt.Errorf("%w: invalid to date %q", apperrors.ErrValidation, toStr)
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return from, to, fmt.Errorf("%w: from date %s is after to date %s", apperrors.ErrValidation, fromStr, toStr)
	}
	return from, to, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
