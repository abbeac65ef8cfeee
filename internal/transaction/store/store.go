package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const table = "transactions"

var columns = []string{"seq", "date", "type", "amount", "currency", "category", "note"}

var insertColumns = append(append([]string{"session_id"}, columns...), "category_key")

// Store persists ledgers in SQL, one ledger per session id. Dates are kept as YYYY-MM-DD text so
// the same queries run on Postgres and SQLite.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// New wraps db. placeholder must match the driver: sq.Dollar for pgx, sq.Question for SQLite.
func New(db *sql.DB, placeholder sq.PlaceholderFormat) *Store {
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// Ledger returns the repository of a single session.
func (s *Store) Ledger(sessionID string) *Ledger {
	return &Ledger{store: s, sessionID: sessionID}
}

// Ledger is a transaction.Repository scoped to one session.
type Ledger struct {
	store     *Store
	sessionID string
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (l *Ledger) Append(ctx context.Context, tx *transaction.Transaction) error {
	return l.AppendBatch(ctx, []*transaction.Transaction{tx})
}

func (l *Ledger) AppendBatch(ctx context.Context, txs []*transaction.Transaction) error {
	dbTx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning append: %w", err)
	}
	defer dbTx.Rollback()

	next, err := l.nextSeq(ctx, dbTx)
	if err != nil {
		return err
	}

	ids := make([]int64, len(txs))

	for i, tx := range txs {
		query, args, err := l.store.sb.
			Insert(table).
			Columns(insertColumns...).
			Values(l.sessionID, next, tx.Date.Format(time.DateOnly), string(tx.Type), tx.Amount, string(tx.Currency),
				tx.Category, tx.Note, transaction.CategoryKey(tx.Category)).
			ToSql()
		if err != nil {
			return fmt.Errorf("building insert: %w", err)
		}

		if _, err := dbTx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}

		ids[i] = next
		next++
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing append: %w", err)
	}

	for i, tx := range txs {
		tx.ID = ids[i]
	}

	return nil
}

func (l *Ledger) nextSeq(ctx context.Context, q querier) (int64, error) {
	query, args, err := l.store.sb.
		Select("COALESCE(MAX(seq), 0) + 1").
		From(table).
		Where(sq.Eq{"session_id": l.sessionID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building sequence query: %w", err)
	}

	var next int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("reading next sequence: %w", err)
	}

	return next, nil
}

func (l *Ledger) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	builder := applyFilter(l.store.sb.Select(columns...).From(table).Where(sq.Eq{"session_id": l.sessionID}), filter)

	query, args, err := builder.OrderBy("seq ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	rows, err := l.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func applyFilter(b sq.SelectBuilder, f transaction.ListFilter) sq.SelectBuilder {
	if f.StartDate != nil {
		b = b.Where(sq.GtOrEq{"date": f.StartDate.Format(time.DateOnly)})
	}

	if f.EndDate != nil {
		b = b.Where(sq.LtOrEq{"date": f.EndDate.Format(time.DateOnly)})
	}

	if f.Type != nil {
		b = b.Where(sq.Eq{"type": string(*f.Type)})
	}

	if f.Category != nil {
		b = b.Where(sq.Eq{"category_key": transaction.CategoryKey(*f.Category)})
	}

	if f.Currency != nil {
		b = b.Where(sq.Eq{"currency": string(*f.Currency)})
	}

	if f.Year != nil {
		b = b.Where("SUBSTR(date, 1, 4) = ?", fmt.Sprintf("%04d", *f.Year))
	}

	if f.Month != nil {
		b = b.Where("SUBSTR(date, 6, 2) = ?", fmt.Sprintf("%02d", int(*f.Month)))
	}

	return b
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction expects the column order of the columns slice.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx                         transaction.Transaction
		date, typeStr, currencyStr string
	)

	if err := s.Scan(&tx.ID, &date, &typeStr, &tx.Amount, &currencyStr, &tx.Category, &tx.Note); err != nil {
		return nil, err
	}

	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("parsing stored date %q: %w", date, err)
	}

	tx.Date = d
	tx.Type = transaction.Type(typeStr)
	tx.Currency = transaction.Currency(currencyStr)

	return &tx, nil
}

func (l *Ledger) Count(ctx context.Context) (int, error) {
	query, args, err := l.store.sb.Select("COUNT(*)").From(table).Where(sq.Eq{"session_id": l.sessionID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}

	var n int
	if err := l.store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return n, nil
}

func (l *Ledger) Clear(ctx context.Context) error {
	query, args, err := l.store.sb.Delete(table).Where(sq.Eq{"session_id": l.sessionID}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	if _, err := l.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}

	return nil
}
