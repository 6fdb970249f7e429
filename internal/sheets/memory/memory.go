// Package memory is an in-memory mirror used in tests and local development
// where no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, tx)
	return fmt.Sprintf("row-%d", len(m.rows)), nil
}

func (m *Mirror) RemoveTransaction(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, tx := range m.rows {
		if tx.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	// Rows that never reached the mirror are not an error.
	return nil
}

// Rows returns a copy of the mirrored transactions.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, len(m.rows))
	copy(out, m.rows)
	return out
}
