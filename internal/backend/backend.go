// Package backend selects and wires the transaction store implementation.
package backend

import (
	"fmt"

	"fintrack/internal/store"
)

// BackendType names a store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases the backend's resources.
type CleanupFunc func() error

// Result carries the created store and its optional cleanup.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Config holds what backend creation needs.
type Config struct {
	Type         BackendType
	SQLiteDBPath string
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}
