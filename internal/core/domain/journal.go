package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a committed journal entry.
type EntryStatus string

const (
	Posted EntryStatus = "POSTED"
	Voided EntryStatus = "VOIDED"
)

// ReferenceType names the originating subsystem of a journal entry.
type ReferenceType string

const (
	RefBooking     ReferenceType = "booking"
	RefFoodOrder   ReferenceType = "food_order"
	RefBarOrder    ReferenceType = "bar_order"
	RefMaintenance ReferenceType = "maintenance"
	RefManual      ReferenceType = "manual"
	RefAdjustment  ReferenceType = "adjustment"
)

// IsValid reports whether r is a known reference type.
func (r ReferenceType) IsValid() bool {
	switch r {
	case RefBooking, RefFoodOrder, RefBarOrder, RefMaintenance, RefManual, RefAdjustment:
		return true
	}
	return false
}

// JournalEntry is the header of a single balanced financial event.
// Immutable once posted, except the status transition to Voided via a reversal.
type JournalEntry struct {
	JournalID          string        `json:"journalID"` // Primary key (UUID)
	EntryDate          time.Time     `json:"entryDate"`
	ReferenceType      ReferenceType `json:"referenceType"`
	ReferenceID        string        `json:"referenceID"` // Optional link to the originating record
	Description        string        `json:"description"`
	Status             EntryStatus   `json:"status"`
	OriginalJournalID  *string       `json:"originalJournalID,omitempty"`  // Set on reversing entries
	ReversingJournalID *string       `json:"reversingJournalID,omitempty"` // Set on voided originals
	AuditFields
	Lines []JournalLine `json:"lines,omitempty"`
}

// IsReversal reports whether the entry was created to reverse another entry.
func (e *JournalEntry) IsReversal() bool {
	return e.OriginalJournalID != nil
}

// JournalLine is a single line item within a journal entry, affecting one account.
// Exactly one of Debit/Credit is nonzero.
type JournalLine struct {
	LineID    string          `json:"lineID"` // Primary key (UUID)
	JournalID string          `json:"journalID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
	AuditFields
}

// LedgerLine is a journal line joined with its entry header, as produced by
// range scans over the ledger.
type LedgerLine struct {
	JournalLine
	EntryDate     time.Time     `json:"entryDate"`
	ReferenceType ReferenceType `json:"referenceType"`
	Description   string        `json:"description"`
	Status        EntryStatus   `json:"status"`
}
