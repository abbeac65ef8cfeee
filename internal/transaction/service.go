package transaction

import (
	"context"
	"fmt"
	"iter"
	"slices"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// Append assigns tx the next sequence id and stores it after every existing entry.
	Append(ctx context.Context, tx *Transaction) error
	// AppendBatch appends all txs in order, or none of them.
	AppendBatch(ctx context.Context, txs []*Transaction) error
	// List returns matching entries in insertion order.
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Service is a session's ledger: validated transactions in insertion order.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add validates a manually entered candidate and appends it.
func (s *Service) Add(ctx context.Context, c Candidate) (*Transaction, error) {
	tx, err := Validate(c)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("appending transaction: %w", err)
	}

	return tx, nil
}

func (s *Service) Append(ctx context.Context, tx *Transaction) error {
	return s.repo.Append(ctx, tx)
}

func (s *Service) AppendBatch(ctx context.Context, txs []*Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	return s.repo.AppendBatch(ctx, txs)
}

// List returns a restartable sequence over the entries matching filter. The entries are
// snapshotted when List is called; ranging over the sequence has no side effects.
func (s *Service) List(ctx context.Context, filter ListFilter) (iter.Seq[*Transaction], error) {
	txs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return slices.Values(txs), nil
}

func (s *Service) Len(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
