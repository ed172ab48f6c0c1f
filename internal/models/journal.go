package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Posted EntryStatus = "POSTED"
	Voided EntryStatus = "VOIDED"
)

// JournalEntry is the storage representation of a journal entry header.
type JournalEntry struct {
	JournalID          string      `db:"journal_id"`
	EntryDate          time.Time   `db:"entry_date"`
	ReferenceType      string      `db:"reference_type"`
	ReferenceID        string      `db:"reference_id"` // Nullable
	Description        string      `db:"description"`
	Status             EntryStatus `db:"status"`
	OriginalJournalID  *string     `db:"original_journal_id"`  // Nullable, set on reversing entries
	ReversingJournalID *string     `db:"reversing_journal_id"` // Nullable, set on voided originals
	AuditFields
}

// JournalLine is the storage representation of a single posting line.
// The CHECK constraint on the table enforces that exactly one side is nonzero.
type JournalLine struct {
	LineID    string          `db:"line_id"`
	JournalID string          `db:"journal_id"`
	AccountID string          `db:"account_id"`
	Debit     decimal.Decimal `db:"debit"`
	Credit    decimal.Decimal `db:"credit"`
	Memo      string          `db:"memo"`
	AuditFields
}
