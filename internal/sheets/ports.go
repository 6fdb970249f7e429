// Package sheets defines the ports for the spreadsheet mirror of the ledger.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionAppender writes one transaction row to the mirror.
	TransactionAppender interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionRemover removes the mirror row for a deleted transaction.
	TransactionRemover interface {
		RemoveTransaction(ctx context.Context, id int64) error
	}

	// Mirror bundles everything the sync worker needs.
	Mirror interface {
		TransactionAppender
		TransactionRemover
	}
)
