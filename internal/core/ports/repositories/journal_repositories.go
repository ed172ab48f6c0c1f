package repositories

import (
	"context"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
)

// LineFilter narrows ledger range scans. Zero-valued From/To mean an open
// bound on that side. AccountID and ReferenceType are optional.
type LineFilter struct {
	AccountID     string
	From          time.Time
	To            time.Time
	ReferenceType domain.ReferenceType
	IncludeVoided bool
}

// ListEntriesParams narrows paginated entry listings.
type ListEntriesParams struct {
	From          time.Time
	To            time.Time
	ReferenceType domain.ReferenceType
	Limit         int
	NextToken     *string
}

// EntryReader defines read operations for journal entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific journal entry header by its identifier.
	FindEntryByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a keyset-paginated list of entries ordered by
	// (entry_date, journal_id) ascending. Returns the entries and a token for
	// the next page.
	ListEntries(ctx context.Context, params ListEntriesParams) ([]domain.JournalEntry, *string, error)
}

// EntryWriter defines the append-only write operations of the ledger store.
// No operation mutates a posted entry's lines.
type EntryWriter interface {
	// SaveEntry persists an entry and its lines atomically in one storage
	// transaction: all lines become visible together or not at all.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error

	// SaveReversal persists a reversing entry and voids the original in the
	// same storage transaction.
	SaveReversal(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, originalJournalID string) error

	// MarkVoided flips an entry to VOIDED, pointing at the reversing entry.
	// Original lines remain queryable for audit.
	MarkVoided(ctx context.Context, journalID string, reversingJournalID string, userID string, now time.Time) error
}

// LineReader defines read operations for journal line data
type LineReader interface {
	// FindLinesByEntryID retrieves all lines of a single journal entry.
	FindLinesByEntryID(ctx context.Context, journalID string) ([]domain.JournalLine, error)

	// ForEachLineInRange streams lines joined with their entry headers,
	// ordered by (entry_date, journal_id, line_id) ascending. The scan is
	// lazy and restartable; it stops early when fn returns an error or the
	// context is cancelled.
	ForEachLineInRange(ctx context.Context, filter LineFilter, fn func(domain.LedgerLine) error) error
}

// JournalRepositoryFacade combines all ledger-store repository interfaces
type JournalRepositoryFacade interface {
	EntryReader
	EntryWriter
	LineReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
