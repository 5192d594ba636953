// Package archive implements the user-initiated backup file contract: a
// single JSON document holding both collections, exported on demand and
// imported as a destructive full replace.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mesalog/mesalog/internal/model"
)

// Version is the document format version written on export.
const Version = 2

// ErrMalformed marks an import document rejected before any mutation.
var ErrMalformed = errors.New("malformed backup document")

// Document is the export/import file shape.
type Document struct {
	Version  int             `json:"version"`
	Date     string          `json:"date"`
	Orders   []model.Order   `json:"orders"`
	Expenses []model.Expense `json:"expenses"`
}

// Export writes both collections to path as an indented JSON document.
func Export(path string, orders []model.Order, expenses []model.Expense) error {
	doc := Document{
		Version:  Version,
		Date:     model.Today(),
		Orders:   orders,
		Expenses: expenses,
	}
	if doc.Orders == nil {
		doc.Orders = []model.Order{}
	}
	if doc.Expenses == nil {
		doc.Expenses = []model.Expense{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup %q: %w", path, err)
	}
	return nil
}

// Import reads and validates a backup document. Documents missing either
// collection array are rejected; validation happens before the caller
// touches any existing state.
func Import(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read backup %q: %w", path, err)
	}

	// Decode with pointer slices to tell a missing array from an empty one.
	var probe struct {
		Version  int              `json:"version"`
		Date     string           `json:"date"`
		Orders   *[]model.Order   `json:"orders"`
		Expenses *[]model.Expense `json:"expenses"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if probe.Orders == nil {
		return Document{}, fmt.Errorf("%w: missing orders array", ErrMalformed)
	}
	if probe.Expenses == nil {
		return Document{}, fmt.Errorf("%w: missing expenses array", ErrMalformed)
	}

	return Document{
		Version:  probe.Version,
		Date:     probe.Date,
		Orders:   *probe.Orders,
		Expenses: *probe.Expenses,
	}, nil
}
