package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/apperrors"
	"github.com/StayBooks/stay_ledger_app/internal/core/domain"
	portsrepo "github.com/StayBooks/stay_ledger_app/internal/core/ports/repositories"
	"github.com/StayBooks/stay_ledger_app/internal/models"
	"github.com/StayBooks/stay_ledger_app/internal/utils/mapping"
	"github.com/StayBooks/stay_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `journal_id, entry_date, reference_type, reference_id, description, status,
	       original_journal_id, reversing_journal_id,
	       created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, journal_id, account_id, debit, credit, memo, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entry and line data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

// mapConflictError converts serialization failures and deadlocks into
// ErrConflict so the service layer can retry the append.
func mapConflictError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.Message)
		}
	}
	return err
}

// SaveEntry persists an entry header and its lines atomically in a single
// DB transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored after a successful commit

	if err := r.insertEntryTx(ctx, tx, entry, lines); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return mapConflictError(err)
	}
	return nil
}

// SaveReversal persists the reversing entry and voids the original in the
// same DB transaction, so the pair becomes visible together or not at all.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, originalJournalID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertEntryTx(ctx, tx, entry, lines); err != nil {
		return err
	}

	// Void the original, guarding against a concurrent reversal of the same
	// entry: the status predicate makes the second writer affect zero rows.
	voidQuery := `
		UPDATE journal_entries
		SET status = 'VOIDED', reversing_journal_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE journal_id = $1 AND status = 'POSTED';
	`
	cmdTag, err := tx.Exec(ctx, voidQuery, originalJournalID, entry.JournalID, entry.CreatedAt, entry.CreatedBy)
	if err != nil {
		return mapConflictError(fmt.Errorf("failed to void original entry %s: %w", originalJournalID, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s was not voidable", apperrors.ErrConflict, originalJournalID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return mapConflictError(err)
	}
	return nil
}

// insertEntryTx inserts the header row and batches the line inserts inside tx.
func (r *PgxJournalRepository) insertEntryTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) error {
	modelEntry := mapping.ToModelJournalEntry(entry)

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, entryQuery,
		modelEntry.JournalID,
		modelEntry.EntryDate,
		modelEntry.ReferenceType,
		nullableString(modelEntry.ReferenceID),
		modelEntry.Description,
		modelEntry.Status,
		modelEntry.OriginalJournalID,
		modelEntry.ReversingJournalID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return mapConflictError(fmt.Errorf("failed to insert journal entry %s: %w", modelEntry.JournalID, err))
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, line := range lines {
		modelLine := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			modelLine.LineID,
			modelLine.JournalID,
			modelLine.AccountID,
			modelLine.Debit,
			modelLine.Credit,
			modelLine.Memo,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapConflictError(fmt.Errorf("failed to execute line batch for entry %s: %w", modelEntry.JournalID, err))
	}
	return nil
}

// MarkVoided flips an entry to VOIDED and records the reversing entry link.
func (r *PgxJournalRepository) MarkVoided(ctx context.Context, journalID string, reversingJournalID string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = 'VOIDED', reversing_journal_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE journal_id = $1 AND status = 'POSTED';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, journalID, reversingJournalID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to void entry %s: %w", journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindEntryByID(ctx, journalID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check entry status after void attempt for %s: %w", journalID, findErr)
		}
		return fmt.Errorf("%w: entry %s is already voided", apperrors.ErrValidation, journalID)
	}
	return nil
}

// FindEntryByID retrieves a journal entry header by its ID.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE journal_id = $1;
	`
	modelEntry, err := scanEntry(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry by ID %s: %w", journalID, err)
	}

	domainEntry := mapping.ToDomainJournalEntry(modelEntry)
	return &domainEntry, nil
}

// FindLinesByEntryID retrieves all lines of a single journal entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE journal_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", journalID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		var memo sql.NullString
		err := rows.Scan(
			&m.LineID,
			&m.JournalID,
			&m.AccountID,
			&m.Debit,
			&m.Credit,
			&memo,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", journalID, err)
		}
		m.Memo = memo.String
		lines = append(lines, mapping.ToDomainJournalLine(m))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", journalID, err)
	}

	return lines, nil
}

// ListEntries retrieves a keyset-paginated list of entries ordered by
// (entry_date, journal_id) ascending. It returns the entries and a token
// for the next page.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + entryColumns + `
		FROM journal_entries
	`

	filterClause := `WHERE 1=1`
	args := []interface{}{}
	if !params.From.IsZero() {
		args = append(args, params.From)
		filterClause += ` AND entry_date >= $` + strconv.Itoa(len(args))
	}
	if !params.To.IsZero() {
		args = append(args, params.To)
		filterClause += ` AND entry_date <= $` + strconv.Itoa(len(args))
	}
	if params.ReferenceType != "" {
		args = append(args, string(params.ReferenceType))
		filterClause += ` AND reference_type = $` + strconv.Itoa(len(args))
	}

	// Ordering must be stable; journal_id breaks entry_date ties.
	orderByClause := `ORDER BY entry_date, journal_id`

	if params.NextToken != nil && *params.NextToken != "" {
		lastDate, lastJournalID, decodeErr := pagination.DecodeToken(*params.NextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}

		// Tuple comparison is concise and efficient in Postgres
		args = append(args, lastDate, lastJournalID)
		filterClause += ` AND (entry_date, journal_id) > ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan journal entry row: %w", scanErr)
		}
		modelEntries = append(modelEntries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}

	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		// The token points to the last item included in this response page.
		lastEntry := modelEntries[limit-1]
		newToken := pagination.EncodeToken(lastEntry.EntryDate, lastEntry.JournalID)
		nextTokenVal = &newToken
		results = modelEntries[:limit]
	}

	domainEntries := make([]domain.JournalEntry, len(results))
	for i, m := range results {
		domainEntries[i] = mapping.ToDomainJournalEntry(m)
	}

	return domainEntries, nextTokenVal, nil
}

// ForEachLineInRange streams lines joined with their entry headers, ordered
// by (entry_date, journal_id, line_id) ascending.
func (r *PgxJournalRepository) ForEachLineInRange(ctx context.Context, filter portsrepo.LineFilter, fn func(domain.LedgerLine) error) error {
	baseQuery := `
		SELECT l.line_id, l.journal_id, l.account_id, l.debit, l.credit, l.memo,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by,
		       j.entry_date, j.reference_type, j.description, j.status
		FROM journal_lines l
		JOIN journal_entries j ON l.journal_id = j.journal_id
	`

	filterClause := `WHERE 1=1`
	args := []interface{}{}
	if !filter.IncludeVoided {
		filterClause += ` AND j.status = 'POSTED' AND j.original_journal_id IS NULL`
	}
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		filterClause += ` AND l.account_id = $` + strconv.Itoa(len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		filterClause += ` AND j.entry_date >= $` + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		filterClause += ` AND j.entry_date <= $` + strconv.Itoa(len(args))
	}
	if filter.ReferenceType != "" {
		args = append(args, string(filter.ReferenceType))
		filterClause += ` AND j.reference_type = $` + strconv.Itoa(len(args))
	}

	orderByClause := `ORDER BY j.entry_date, l.journal_id, l.line_id`
	query := baseQuery + " " + filterClause + " " + orderByClause + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query ledger lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.JournalLine
		var memo sql.NullString
		var line domain.LedgerLine
		err := rows.Scan(
			&m.LineID,
			&m.JournalID,
			&m.AccountID,
			&m.Debit,
			&m.Credit,
			&memo,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&line.EntryDate,
			&line.ReferenceType,
			&line.Description,
			&line.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to scan ledger line row: %w", err)
		}
		m.Memo = memo.String
		line.JournalLine = mapping.ToDomainJournalLine(m)

		if err := fn(line); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating ledger line rows: %w", err)
	}
	return nil
}

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	var referenceID sql.NullString
	var originalID sql.NullString
	var reversingID sql.NullString

	err := row.Scan(
		&m.JournalID,
		&m.EntryDate,
		&m.ReferenceType,
		&referenceID,
		&m.Description,
		&m.Status,
		&originalID,
		&reversingID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}

	m.ReferenceID = referenceID.String
	if originalID.Valid {
		m.OriginalJournalID = &originalID.String
	}
	if reversingID.Valid {
		m.ReversingJournalID = &reversingID.String
	}
	return m, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
