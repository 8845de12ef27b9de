// Package storage provides durable key to blob stores for device state.
//
// Three backends implement BlobStore:
//   - file: one JSON file per key, written atomically (temp file + rename)
//   - sqlite: a single table in a modernc.org/sqlite database
//   - memory: process-local map, used by tests and the simulator's --ephemeral mode
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a durable key to blob mapping.
type BlobStore interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendMemory}
}

// Open opens the named backend rooted at dir.
func Open(backend, dir string) (BlobStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		fs, err := NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendSQLite:
		db, err := OpenSQLite(dir)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (expected %s)", backend, strings.Join(Backends(), "|"))
	}
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("blob key is empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
