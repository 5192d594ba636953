package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesalog/mesalog/internal/model"
)

// FileStore implements BackupBackend with one JSON document per key under a
// directory. It has no transactional or indexed semantics; every write
// overwrites the whole key, so there is no partial-write window.
type FileStore struct {
	dir string
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create backup dir %q: %v", ErrStorageUnavailable, dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Probe verifies the store accepts writes with a throwaway key.
func (s *FileStore) Probe() error {
	path := s.path("__probe__")
	if err := os.WriteFile(path, []byte("probe"), 0o644); err != nil {
		return fmt.Errorf("%w: probe write: %v", ErrStorageUnavailable, err)
	}
	os.Remove(path)
	return nil
}

// WriteOrders serializes the whole collection and overwrites its key.
func (s *FileStore) WriteOrders(orders []model.Order) error {
	return s.write(KeyOrders, orders)
}

// WriteExpenses serializes the whole collection and overwrites its key.
func (s *FileStore) WriteExpenses(expenses []model.Expense) error {
	return s.write(KeyExpenses, expenses)
}

// ReadOrders returns the stored collection, or an empty one if the key is
// absent or the blob fails to parse. There is no partial recovery.
func (s *FileStore) ReadOrders() []model.Order {
	var orders []model.Order
	if err := s.read(KeyOrders, &orders); err != nil {
		return nil
	}
	return orders
}

// ReadExpenses returns the stored collection, or an empty one on any failure.
func (s *FileStore) ReadExpenses() []model.Expense {
	var expenses []model.Expense
	if err := s.read(KeyExpenses, &expenses); err != nil {
		return nil
	}
	return expenses
}

// Delete removes one key. An absent key is not an error.
func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %q: %v", ErrWriteFailed, key, err)
	}
	return nil
}

// Clear removes both collection keys.
func (s *FileStore) Clear() error {
	for _, key := range []string{KeyOrders, KeyExpenses} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// WriteValue stores a small string value (timestamps, flags) under a key.
func (s *FileStore) WriteValue(key, value string) error {
	return s.write(key, value)
}

// ReadValue returns the stored string, or "" if absent or unreadable.
func (s *FileStore) ReadValue(key string) string {
	var value string
	if err := s.read(key, &value); err != nil {
		return ""
	}
	return value
}

func (s *FileStore) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %v", ErrWriteFailed, key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrWriteFailed, key, err)
	}
	return nil
}

// read decodes the key into v. The error exists so callers can discard a
// partially decoded value; no reader surfaces it further.
func (s *FileStore) read(key string, v any) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %q: %v", ErrParseFailed, key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
