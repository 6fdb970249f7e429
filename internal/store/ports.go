// Package store defines the ports the transaction store must satisfy.
package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var (
	// ErrStoreUnavailable wraps infrastructure failures of the backing
	// store. Callers propagate it; the core never retries.
	ErrStoreUnavailable = errors.New("transaction store unavailable")

	ErrNotFound = errors.New("transaction not found")
)

// Ports for outbound adapters.
type (
	// TransactionSource provides the read-all-by-user capability the
	// aggregation core consumes.
	TransactionSource interface {
		ListByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		// Create persists a new transaction and returns its assigned ID.
		Create(ctx context.Context, tx core.Transaction) (int64, error)
		// Update replaces the mutable fields of an existing transaction.
		Update(ctx context.Context, tx core.Transaction) error
		// Delete removes a transaction owned by ownerID.
		Delete(ctx context.Context, ownerID string, id int64) error
	}

	TransactionGetter interface {
		Get(ctx context.Context, ownerID string, id int64) (core.Transaction, error)
	}

	// Store bundles every port a backend must provide.
	Store interface {
		TransactionSource
		TransactionWriter
		TransactionGetter
	}
)
