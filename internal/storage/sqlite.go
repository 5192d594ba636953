package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mesalog/mesalog/internal/model"
)

// schemaVersion is stored in PRAGMA user_version. Bumping it re-runs the
// upgrade, which only creates missing tables and indexes.
const schemaVersion = 2

// DurableStore implements DurableBackend on SQLite.
type DurableStore struct {
	db *sql.DB
}

// NewDurableStore opens (or creates) the SQLite database at path and ensures
// the schema is at the current version. Use ":memory:" for an in-memory
// database. Failure to open or migrate reports ErrStorageUnavailable.
func NewDurableStore(path string) (*DurableStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %q: %v", ErrStorageUnavailable, path, err)
	}

	// Enable WAL mode; also serves as the open probe.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set WAL mode: %v", ErrStorageUnavailable, err)
	}

	if err := upgradeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return &DurableStore{db: db}, nil
}

func upgradeSchema(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id          INTEGER PRIMARY KEY,
		date        TEXT NOT NULL,
		table_label TEXT NOT NULL,
		customer    TEXT NOT NULL,
		server      TEXT NOT NULL,
		paid        INTEGER NOT NULL DEFAULT 0,
		tip         REAL NOT NULL DEFAULT 0,
		items       TEXT NOT NULL,
		total       REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS orders_date ON orders(date);
	CREATE INDEX IF NOT EXISTS orders_table ON orders(table_label);
	CREATE INDEX IF NOT EXISTS orders_customer ON orders(customer);
	CREATE INDEX IF NOT EXISTS orders_server ON orders(server);
	CREATE INDEX IF NOT EXISTS orders_paid ON orders(paid);
	CREATE TABLE IF NOT EXISTS expenses (
		id       INTEGER PRIMARY KEY,
		date     TEXT NOT NULL,
		category TEXT NOT NULL,
		concept  TEXT NOT NULL,
		amount   REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS expenses_date ON expenses(date);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// OrdersAll returns every stored order. An empty table yields an empty slice.
func (s *DurableStore) OrdersAll(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, table_label, customer, server, paid, tip, items, total FROM orders ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		var paid int
		var itemsJSON string
		if err := rows.Scan(&o.ID, &o.Date, &o.Table, &o.Customer, &o.Server, &paid, &o.Tip, &itemsJSON, &o.Total); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Paid = paid != 0
		// Stored shapes are trusted on read.
		json.Unmarshal([]byte(itemsJSON), &o.Items)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ExpensesAll returns every stored expense.
func (s *DurableStore) ExpensesAll(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, category, concept, amount FROM expenses ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &e.Concept, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ReplaceOrders clears the orders table and inserts every order, one row at
// a time. The sequence is intentionally not wrapped in a transaction: a
// process killed mid-replace leaves a partial table, and the backup store's
// single-blob write is the recovery source for that window.
func (s *DurableStore) ReplaceOrders(ctx context.Context, orders []model.Order) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM orders"); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	for _, o := range orders {
		itemsJSON, err := json.Marshal(o.Items)
		if err != nil {
			return fmt.Errorf("encode items for order %d: %w", o.ID, err)
		}
		paid := 0
		if o.Paid {
			paid = 1
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO orders (id, date, table_label, customer, server, paid, tip, items, total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Date, o.Table, o.Customer, o.Server, paid, o.Tip, string(itemsJSON), o.Total,
		)
		if err != nil {
			return fmt.Errorf("insert order %d: %w", o.ID, err)
		}
	}
	return nil
}

// ReplaceExpenses clears the expenses table and inserts every expense.
// Same non-transactional replace semantics as ReplaceOrders.
func (s *DurableStore) ReplaceExpenses(ctx context.Context, expenses []model.Expense) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses"); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	for _, e := range expenses {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO expenses (id, date, category, concept, amount)
			VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Date, e.Category, e.Concept, e.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert expense %d: %w", e.ID, err)
		}
	}
	return nil
}

// ClearOrders deletes every order.
func (s *DurableStore) ClearOrders(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM orders"); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	return nil
}

// ClearExpenses deletes every expense.
func (s *DurableStore) ClearExpenses(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses"); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	return nil
}

// Close shuts down the database.
func (s *DurableStore) Close() error {
	return s.db.Close()
}
