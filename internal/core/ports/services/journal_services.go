package services

import (
	"context"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	"github.com/StayBooks/stay_ledger_app/internal/dto"
)

// PostingSvc validates and commits journal entries. It is the single
// mutation point of the ledger.
type PostingSvc interface {
	// PostEntry runs a proposed entry through validation and commits it
	// atomically. Returns the committed entry with status POSTED, or
	// ErrValidation / ErrConflict.
	PostEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// ReverseEntry posts a new entry with every line's sides swapped and
	// voids the original. ErrNotFound for an unknown entry, ErrValidation
	// when the original is already voided or is itself a reversal.
	ReverseEntry(ctx context.Context, journalID string, reason string, userID string) (*domain.JournalEntry, error)

	// GetEntryByID retrieves a committed entry with its lines.
	GetEntryByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a keyset-paginated page of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ListLinesByAccount streams an account statement over a range,
	// including voided lines for audit.
	ListLinesByAccount(ctx context.Context, accountID string, filter portsrepo.LineFilter) ([]domain.LedgerLine, error)
}
