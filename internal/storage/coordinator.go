package storage

import (
	"context"

	"github.com/mesalog/mesalog/internal/autocomplete"
	"github.com/mesalog/mesalog/internal/model"
	"github.com/mesalog/mesalog/internal/observability"
)

// Mode is the coordinator's runtime determination of which backends are
// usable this session. It is decided once by Initialize and never re-probed;
// a mid-session write failure logs and degrades status, not mode.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeDurableOnly
	ModeBackupOnly
	ModeBoth
	ModeNone
)

func (m Mode) String() string {
	switch m {
	case ModeDurableOnly:
		return "durable-only"
	case ModeBackupOnly:
		return "backup-only"
	case ModeBoth:
		return "both"
	case ModeNone:
		return "none"
	default:
		return "unknown"
	}
}

// Status is the tri-state persistence health surfaced to the UI.
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	default:
		return "unavailable"
	}
}

// Coordinator is the single point of truth for where the order and expense
// collections live. It exclusively owns the in-memory collections for the
// session; all mutation goes through its save calls, which update memory
// first and then replicate to every available backend independently.
//
// Coordinator is not safe for concurrent use: callers are expected to await
// completion of one operation before issuing another.
type Coordinator struct {
	log     *observability.Logger
	durable DurableBackend
	backup  BackupBackend

	mode     Mode
	orders   []model.Order
	expenses []model.Expense
	index    autocomplete.Index
	unsaved  bool // last save reached no backend
	degraded bool // at least one backend write has failed this session
}

// NewCoordinator wires the coordinator to its backends. Either backend may
// be nil when it could not be constructed; Initialize settles the mode.
func NewCoordinator(durable DurableBackend, backup BackupBackend, log *observability.Logger) *Coordinator {
	return &Coordinator{
		log:     log,
		durable: durable,
		backup:  backup,
		mode:    ModeUnknown,
		index:   autocomplete.Build(nil),
	}
}

// Initialize probes both backends and settles the storage mode for the
// session. It never fails: with no usable backend the mode becomes ModeNone
// and loads yield empty collections.
func (c *Coordinator) Initialize(ctx context.Context) {
	durableOK := c.durable != nil
	backupOK := false

	if c.backup != nil {
		if err := c.backup.Probe(); err != nil {
			c.log.Warn("backup store probe failed", "error", err)
		} else {
			backupOK = true
		}
	}

	switch {
	case durableOK && backupOK:
		c.mode = ModeBoth
	case durableOK:
		c.mode = ModeDurableOnly
	case backupOK:
		c.mode = ModeBackupOnly
	default:
		c.mode = ModeNone
	}
	c.log.StorageEvent("initialize", c.mode.String())
}

// Load reads both collections from the preferred backend: the durable store
// when available, otherwise the backup store, otherwise empty. A durable
// read failure mid-load falls back to the backup store. Load never fails.
func (c *Coordinator) Load(ctx context.Context) {
	c.orders = nil
	c.expenses = nil

	switch c.mode {
	case ModeBoth, ModeDurableOnly:
		orders, err := c.durable.OrdersAll(ctx)
		if err == nil {
			var expErr error
			c.orders = orders
			c.expenses, expErr = c.durable.ExpensesAll(ctx)
			if expErr == nil {
				break
			}
			err = expErr
		}
		c.log.Warn("durable load failed", "error", err)
		if c.mode == ModeBoth {
			c.loadFromBackup()
		}
	case ModeBackupOnly:
		c.loadFromBackup()
	}

	c.index = autocomplete.Build(c.orders)
	c.log.StorageEvent("load", c.mode.String(),
		"orders", len(c.orders), "expenses", len(c.expenses))
}

func (c *Coordinator) loadFromBackup() {
	c.orders = c.backup.ReadOrders()
	c.expenses = c.backup.ReadExpenses()
}

// SaveOrders accepts the new order collection into memory, rebuilds the
// derived index, and replicates to every available backend independently.
// The returned Status describes this save: ok when every configured backend
// took the write, degraded when at least one did, unavailable when none did.
func (c *Coordinator) SaveOrders(ctx context.Context, orders []model.Order) Status {
	c.orders = cloneOrders(orders)
	c.index = autocomplete.Build(c.orders)

	return c.replicate(ctx, "orders",
		func() error { return c.durable.ReplaceOrders(ctx, c.orders) },
		func() error { return c.backup.WriteOrders(c.orders) },
	)
}

// SaveExpenses accepts the new expense collection into memory and replicates
// it. Same status semantics as SaveOrders.
func (c *Coordinator) SaveExpenses(ctx context.Context, expenses []model.Expense) Status {
	c.expenses = cloneExpenses(expenses)

	return c.replicate(ctx, "expenses",
		func() error { return c.durable.ReplaceExpenses(ctx, c.expenses) },
		func() error { return c.backup.WriteExpenses(c.expenses) },
	)
}

// ReplaceAll swaps in both collections at once (import path) and persists
// them. The worse of the two save outcomes is returned.
func (c *Coordinator) ReplaceAll(ctx context.Context, orders []model.Order, expenses []model.Expense) Status {
	st := c.SaveOrders(ctx, orders)
	if other := c.SaveExpenses(ctx, expenses); other > st {
		st = other
	}
	return st
}

// replicate writes one collection to each available backend. A failure in
// one backend never prevents the attempt on the other.
func (c *Coordinator) replicate(ctx context.Context, collection string, writeDurable, writeBackup func() error) Status {
	attempted, succeeded := 0, 0

	if c.mode == ModeBoth || c.mode == ModeDurableOnly {
		attempted++
		if err := writeDurable(); err != nil {
			c.degraded = true
			c.log.Warn("durable write failed", "collection", collection, "error", err)
		} else {
			succeeded++
		}
	}
	if c.mode == ModeBoth || c.mode == ModeBackupOnly {
		attempted++
		if err := writeBackup(); err != nil {
			c.degraded = true
			c.log.Warn("backup write failed", "collection", collection, "error", err)
		} else {
			succeeded++
		}
	}

	switch {
	case attempted == 0 || succeeded == 0:
		// Memory keeps the new collection, but nothing durable took it.
		c.unsaved = true
		c.log.Warn("collection unsaved, in-memory only", "collection", collection)
		return StatusUnavailable
	case succeeded < attempted || c.mode != ModeBoth:
		c.unsaved = false
		c.log.StorageEvent("save", c.mode.String(), "collection", collection, "status", "degraded")
		return StatusDegraded
	default:
		c.unsaved = false
		c.log.StorageEvent("save", c.mode.String(), "collection", collection)
		return StatusOK
	}
}

// Wipe empties memory and every backend. Confirmation is the caller's job;
// the coordinator just executes. Backend failures are logged, not returned.
func (c *Coordinator) Wipe(ctx context.Context) {
	c.orders = nil
	c.expenses = nil
	c.index = autocomplete.Build(nil)

	if c.mode == ModeBoth || c.mode == ModeDurableOnly {
		if err := c.durable.ClearOrders(ctx); err != nil {
			c.log.Warn("wipe orders failed", "backend", "durable", "error", err)
		}
		if err := c.durable.ClearExpenses(ctx); err != nil {
			c.log.Warn("wipe expenses failed", "backend", "durable", "error", err)
		}
	}
	if c.mode == ModeBoth || c.mode == ModeBackupOnly {
		if err := c.backup.Clear(); err != nil {
			c.log.Warn("wipe backup failed", "error", err)
		}
	}
	c.log.StorageEvent("wipe", c.mode.String())
}

// Status reports the session's persistence health for the status indicator.
func (c *Coordinator) Status() Status {
	switch {
	case c.mode == ModeNone || c.unsaved:
		return StatusUnavailable
	case c.mode != ModeBoth || c.degraded:
		return StatusDegraded
	default:
		return StatusOK
	}
}

// Mode returns the storage mode settled at Initialize.
func (c *Coordinator) Mode() Mode { return c.mode }

// Orders returns a copy of the in-memory order collection.
func (c *Coordinator) Orders() []model.Order { return cloneOrders(c.orders) }

// Expenses returns a copy of the in-memory expense collection.
func (c *Coordinator) Expenses() []model.Expense { return cloneExpenses(c.expenses) }

// Index returns the current autocomplete index.
func (c *Coordinator) Index() autocomplete.Index { return c.index }

// Close releases the durable backend's connection. The backup store holds no
// open handles.
func (c *Coordinator) Close() {
	if c.durable != nil {
		if err := c.durable.Close(); err != nil {
			c.log.Warn("close durable store", "error", err)
		}
	}
}

func cloneOrders(orders []model.Order) []model.Order {
	if orders == nil {
		return nil
	}
	out := make([]model.Order, len(orders))
	copy(out, orders)
	return out
}

func cloneExpenses(expenses []model.Expense) []model.Expense {
	if expenses == nil {
		return nil
	}
	out := make([]model.Expense, len(expenses))
	copy(out, expenses)
	return out
}
