// Package storage implements the SQLite-backed transaction store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	return nil
}

// Create inserts a validated transaction and returns its assigned ID.
func (r *SQLiteRepository) Create(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (owner_id, kind, category, amount_cents, occurred_on, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.OwnerID, string(tx.Kind), tx.Category, tx.Amount.Cents, tx.OccurredOn.String(), tx.Notes)
	if err != nil {
		return 0, fmt.Errorf("%w: insert transaction: %v", store.ErrStoreUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", store.ErrStoreUnavailable, err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"owner_id", tx.OwnerID,
		"kind", tx.Kind,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)

	return id, nil
}

// Update replaces the mutable fields of an owned transaction and bumps its
// version so the sync worker can detect stale mirror rows.
func (r *SQLiteRepository) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET kind = ?, category = ?, amount_cents = ?, occurred_on = ?, notes = ?,
		    version = version + 1, sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		string(tx.Kind), tx.Category, tx.Amount.Cents, tx.OccurredOn.String(), tx.Notes,
		tx.ID, tx.OwnerID)
	if err != nil {
		return fmt.Errorf("%w: update transaction: %v", store.ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", store.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete soft-deletes an owned transaction. The row stays around so the sync
// worker can remove its mirror copy.
func (r *SQLiteRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET deleted_at = CURRENT_TIMESTAMP, sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: delete transaction: %v", store.ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", store.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner_id", ownerID)
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, ownerID string, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, kind, category, amount_cents, occurred_on, notes
		FROM transactions
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		id, ownerID)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, store.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("%w: get transaction: %v", store.ErrStoreUnavailable, err)
	}
	return tx, nil
}

// ListByOwner returns all live transactions for an owner ordered by date,
// then insertion order.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, kind, category, amount_cents, occurred_on, notes
		FROM transactions
		WHERE owner_id = ? AND deleted_at IS NULL
		ORDER BY occurred_on, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", store.ErrStoreUnavailable, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %v", store.ErrStoreUnavailable, err)
	}
	return out, nil
}

// PendingSyncTransaction carries the minimal data the sync queue needs.
// CreatedAt keeps the stored text form; it is only logged.
type PendingSyncTransaction struct {
	ID        int64
	Version   int64
	Deleted   bool
	CreatedAt string
}

// GetPendingSync returns transactions whose mirror copy is out of date,
// including soft-deleted rows whose mirror row must be removed.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, deleted_at IS NOT NULL, created_at
		FROM transactions
		WHERE sync_status = 'pending'
		ORDER BY created_at
		LIMIT ?`,
		int64(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: get pending sync: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.Version, &p.Deleted, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan pending sync: %v", store.ErrStoreUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate pending sync: %v", store.ErrStoreUnavailable, err)
	}
	return out, nil
}

// GetForSync loads a transaction regardless of owner, including soft-deleted
// rows. Only the sync worker uses it.
func (r *SQLiteRepository) GetForSync(ctx context.Context, id int64) (core.Transaction, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, kind, category, amount_cents, occurred_on, notes, deleted_at IS NOT NULL
		FROM transactions
		WHERE id = ?`,
		id)

	var (
		tx         core.Transaction
		kind       string
		occurredOn string
		deleted    bool
	)
	err := row.Scan(&tx.ID, &tx.OwnerID, &kind, &tx.Category, &tx.Amount.Cents, &occurredOn, &tx.Notes, &deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, false, store.ErrNotFound
		}
		return core.Transaction{}, false, fmt.Errorf("%w: get for sync: %v", store.ErrStoreUnavailable, err)
	}

	tx.Kind = core.Kind(kind)
	tx.OccurredOn, err = core.ParseDate(occurredOn)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("parse stored date: %w", err)
	}
	return tx, deleted, nil
}

// MarkSynced records a successful mirror write.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'synced' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: mark synced: %v", store.ErrStoreUnavailable, err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError records a failed mirror write so the row surfaces again.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: mark sync error: %v", store.ErrStoreUnavailable, err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx         core.Transaction
		kind       string
		occurredOn string
	)
	if err := row.Scan(&tx.ID, &tx.OwnerID, &kind, &tx.Category, &tx.Amount.Cents, &occurredOn, &tx.Notes); err != nil {
		return core.Transaction{}, err
	}

	tx.Kind = core.Kind(kind)
	date, err := core.ParseDate(occurredOn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", occurredOn, err)
	}
	tx.OccurredOn = date
	return tx, nil
}

var _ store.Store = (*SQLiteRepository)(nil)
