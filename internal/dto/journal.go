package dto

import (
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineRequest defines one proposed posting line. Exactly one of
// Debit/Credit must be set, strictly positive.
type CreateLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// CreateEntryRequest defines a proposed journal entry as handed over by a
// producer (booking, order, maintenance workflow or a manual posting).
type CreateEntryRequest struct {
	Date          string               `json:"date" binding:"required,datetime=2006-01-02"`
	ReferenceType domain.ReferenceType `json:"referenceType" binding:"required,referencetype"`
	ReferenceID   string               `json:"referenceID"`
	Description   string               `json:"description" binding:"required"`
	Lines         []CreateLineRequest  `json:"lines" binding:"required,min=2,dive"`
}

// ReverseEntryRequest carries the reason for voiding an entry.
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID    string          `json:"lineID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	JournalID          string         `json:"journalID"`
	EntryDate          time.Time      `json:"entryDate"`
	ReferenceType      string         `json:"referenceType"`
	ReferenceID        string         `json:"referenceID,omitempty"`
	Description        string         `json:"description"`
	Status             string         `json:"status"`
	OriginalJournalID  *string        `json:"originalJournalID,omitempty"`
	ReversingJournalID *string        `json:"reversingJournalID,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	CreatedBy          string         `json:"createdBy"`
	Lines              []LineResponse `json:"lines,omitempty"`
}

// ToLineResponse converts a domain.JournalLine to a LineResponse DTO.
func ToLineResponse(line *domain.JournalLine) LineResponse {
	return LineResponse{
		LineID:    line.LineID,
		AccountID: line.AccountID,
		Debit:     line.Debit,
		Credit:    line.Credit,
		Memo:      line.Memo,
	}
}

// ToEntryResponse converts a domain.JournalEntry to an EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		JournalID:          e.JournalID,
		EntryDate:          e.EntryDate,
		ReferenceType:      string(e.ReferenceType),
		ReferenceID:        e.ReferenceID,
		Description:        e.Description,
		Status:             string(e.Status),
		OriginalJournalID:  e.OriginalJournalID,
		ReversingJournalID: e.ReversingJournalID,
		CreatedAt:          e.CreatedAt,
		CreatedBy:          e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]LineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToLineResponse(&e.Lines[i])
		}
	}
	return resp
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	From          string `form:"from"`
	To            string `form:"to"`
	ReferenceType string `form:"referenceType"`
	Limit         int    `form:"limit,default=20"`
	NextToken     *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// LedgerLineResponse is a line joined with its entry header, as returned by
// the account statement endpoint.
type LedgerLineResponse struct {
	LineResponse
	JournalID     string    `json:"journalID"`
	EntryDate     time.Time `json:"entryDate"`
	ReferenceType string    `json:"referenceType"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
}

// ToLedgerLineResponse converts a domain.LedgerLine to its DTO.
func ToLedgerLineResponse(l *domain.LedgerLine) LedgerLineResponse {
	return LedgerLineResponse{
		LineResponse:  ToLineResponse(&l.JournalLine),
		JournalID:     l.JournalID,
		EntryDate:     l.EntryDate,
		ReferenceType: string(l.ReferenceType),
		Description:   l.Description,
		Status:        string(l.Status),
	}
}

// ListLinesResponse wraps an account statement.
type ListLinesResponse struct {
	Lines []LedgerLineResponse `json:"lines"`
}
