package mapping

import (
	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	"github.com/StayBooks/stay_ledger_app/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalID:          d.JournalID,
		EntryDate:          d.EntryDate,
		ReferenceType:      string(d.ReferenceType),
		ReferenceID:        d.ReferenceID,
		Description:        d.Description,
		Status:             models.EntryStatus(d.Status),
		OriginalJournalID:  d.OriginalJournalID,
		ReversingJournalID: d.ReversingJournalID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalID:          m.JournalID,
		EntryDate:          m.EntryDate,
		ReferenceType:      domain.ReferenceType(m.ReferenceType),
		ReferenceID:        m.ReferenceID,
		Description:        m.Description,
		Status:             domain.EntryStatus(m.Status),
		OriginalJournalID:  m.OriginalJournalID,
		ReversingJournalID: m.ReversingJournalID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine.
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		JournalID:   d.JournalID,
		AccountID:   d.AccountID,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Memo:        d.Memo,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		JournalID:   m.JournalID,
		AccountID:   m.AccountID,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Memo:        m.Memo,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
