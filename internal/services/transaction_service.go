// Package services orchestrates the ledger operations across the store,
// the reporting core, and the AMQP sync queue.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// SyncPublisher schedules a mirror sync for one transaction.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
}

// TransactionService handles the write side of the ledger. Writes go to the
// store first; mirror sync is published best-effort and never fails the
// request.
type TransactionService struct {
	store     store.Store
	publisher SyncPublisher
}

func NewTransactionService(s store.Store, publisher SyncPublisher) *TransactionService {
	return &TransactionService{store: s, publisher: publisher}
}

// Create validates and persists a new transaction, then schedules its
// mirror sync.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.Create(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id

	s.publishSync(ctx, id, 1)
	return tx, nil
}

// Update replaces an existing transaction owned by tx.OwnerID.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if err := s.store.Update(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	// Version is tracked by the store; the worker reloads the row anyway,
	// so the published version only needs to be newer than the original.
	s.publishSync(ctx, tx.ID, 2)
	return nil
}

// Delete removes a transaction and schedules removal of its mirror row.
func (s *TransactionService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishSync(ctx, id, 0)
	return nil
}

// Get returns one transaction owned by ownerID.
func (s *TransactionService) Get(ctx context.Context, ownerID string, id int64) (core.Transaction, error) {
	return s.store.Get(ctx, ownerID, id)
}

// List returns all transactions for an owner ordered by date.
func (s *TransactionService) List(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *TransactionService) publishSync(ctx context.Context, id, version int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, version); err != nil {
		// The row is saved locally; the worker's pending scan will catch it.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}
}
