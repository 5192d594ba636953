// Package storage implements mesalog's dual-store persistence layer.
//
// A DurableStore (SQLite via modernc.org/sqlite) is the primary backend; a
// FileStore (flat JSON key-value files) is the fallback. The Coordinator owns
// the in-memory collections, probes both backends once at startup, and keeps
// them in sync with best-effort independent writes on every mutation.
//
// Storage failures never propagate past the Coordinator boundary; they are
// logged and reflected in a tri-state Status.
package storage

import (
	"context"
	"errors"

	"github.com/mesalog/mesalog/internal/model"
)

var (
	// ErrStorageUnavailable means a backend cannot be opened or used at all.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrWriteFailed means a single save attempt against one backend failed.
	ErrWriteFailed = errors.New("write failed")

	// ErrParseFailed means a backup blob could not be decoded.
	ErrParseFailed = errors.New("parse failed")
)

// Fixed backup-store keys.
const (
	KeyOrders     = "mesalog_orders"
	KeyExpenses   = "mesalog_expenses"
	KeyLastExport = "mesalog_last_export"
)

// DurableBackend is the structured, indexed on-device database.
// Replace operations are whole-collection: clear, then insert every record.
type DurableBackend interface {
	OrdersAll(ctx context.Context) ([]model.Order, error)
	ExpensesAll(ctx context.Context) ([]model.Expense, error)
	ReplaceOrders(ctx context.Context, orders []model.Order) error
	ReplaceExpenses(ctx context.Context, expenses []model.Expense) error
	ClearOrders(ctx context.Context) error
	ClearExpenses(ctx context.Context) error
	Close() error
}

// BackupBackend is the flat key-value fallback store. Writes overwrite a
// whole collection under one key; reads return empty collections when the
// key is absent or unreadable, never an error.
type BackupBackend interface {
	Probe() error
	WriteOrders(orders []model.Order) error
	WriteExpenses(expenses []model.Expense) error
	ReadOrders() []model.Order
	ReadExpenses() []model.Expense
	Clear() error
	WriteValue(key, value string) error
	ReadValue(key string) string
}
