package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Readable postings are those on entries that are still in force: posted,
// and not themselves a reversal of something else. Voided originals and
// their reversing entries cancel, so both sides are excluded from reports.
const readableEntryClause = `j.status = 'POSTED' AND j.original_journal_id IS NULL`

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SumAccountRange returns the gross debit and credit totals posted to one
// account within [from, to]. Zero time bounds leave that side open.
func (r *reportingRepository) SumAccountRange(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(l.debit), 0) AS total_debit,
			COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journal_lines l
		JOIN journal_entries j ON l.journal_id = j.journal_id
		WHERE l.account_id = $1
			AND ` + readableEntryClause + `
			AND ($2::timestamptz IS NULL OR j.entry_date >= $2)
			AND ($3::timestamptz IS NULL OR j.entry_date <= $3)
	`

	var debit, credit decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, accountID, nullableTime(from), nullableTime(to)).Scan(&debit, &credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("error querying account sums for %s: %w", accountID, err)
	}

	return debit, credit, nil
}

// SumByTypeRange returns per-account gross debit and credit totals for all
// accounts of one type within [from, to]. Accounts with no postings in the
// range are omitted.
func (r *reportingRepository) SumByTypeRange(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name AS account_name,
			a.account_type,
			COALESCE(SUM(l.debit), 0) AS total_debit,
			COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journal_lines l
		JOIN accounts a ON l.account_id = a.account_id
		JOIN journal_entries j ON l.journal_id = j.journal_id
		WHERE a.account_type = $1
			AND ` + readableEntryClause + `
			AND ($2::timestamptz IS NULL OR j.entry_date >= $2)
			AND ($3::timestamptz IS NULL OR j.entry_date <= $3)
		GROUP BY a.account_id, a.code, a.name, a.account_type
	`

	rows, err := r.Pool.Query(ctx, query, string(accountType), nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, fmt.Errorf("error querying sums for account type %s: %w", accountType, err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var rowType string

		if err := rows.Scan(
			&row.AccountID,
			&row.Code,
			&row.AccountName,
			&rowType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, fmt.Errorf("error scanning account type sum row: %w", err)
		}

		row.AccountType = domain.AccountType(rowType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account type sum rows: %w", err)
	}

	return result, nil
}

// GetTrialBalanceData retrieves trial balance data as of a specific date
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name AS account_name,
			a.account_type,
			COALESCE(SUM(l.debit), 0) AS total_debit,
			COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journal_lines l
		JOIN accounts a ON l.account_id = a.account_id
		JOIN journal_entries j ON l.journal_id = j.journal_id
		WHERE j.entry_date <= $1
			AND ` + readableEntryClause + `
		GROUP BY a.account_id, a.code, a.name, a.account_type
	`

	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string

		if err := rows.Scan(
			&row.AccountID,
			&row.Code,
			&row.AccountName,
			&accountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}

		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}

	return result, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
