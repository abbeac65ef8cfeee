// Package memory holds a session's ledger in process memory.
package memory

import (
	"context"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// Ledger is an in-memory transaction.Repository. It has a single owner and does no locking;
// callers that share one across goroutines must serialize access themselves.
type Ledger struct {
	entries []transaction.Transaction
	nextID  int64
}

func New() *Ledger {
	return &Ledger{nextID: 1}
}

func (l *Ledger) Append(_ context.Context, tx *transaction.Transaction) error {
	tx.ID = l.nextID
	l.nextID++
	l.entries = append(l.entries, *tx)

	return nil
}

// AppendBatch appends txs in order. A cancelled context appends none of them.
func (l *Ledger) AppendBatch(ctx context.Context, txs []*transaction.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, tx := range txs {
		if err := l.Append(ctx, tx); err != nil {
			return err
		}
	}

	return nil
}

// List returns copies of the matching entries, so callers cannot alter stored transactions.
func (l *Ledger) List(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction

	for i := range l.entries {
		if !filter.Match(&l.entries[i]) {
			continue
		}

		tx := l.entries[i]
		out = append(out, &tx)
	}

	return out, nil
}

func (l *Ledger) Count(_ context.Context) (int, error) {
	return len(l.entries), nil
}

// Clear drops every entry. Numbering restarts at 1.
func (l *Ledger) Clear(_ context.Context) error {
	l.entries = nil
	l.nextID = 1

	return nil
}
