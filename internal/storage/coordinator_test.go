package storage

import (
	"context"
	"io"
	"testing"

	"github.com/mesalog/mesalog/internal/model"
	"github.com/mesalog/mesalog/internal/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger("test", io.Discard)
}

// newHealthyCoordinator wires a coordinator to a real in-memory SQLite store
// and a real file store in a temp dir.
func newHealthyCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	durable := newTestDurable(t)
	backup := newTestFileStore(t)
	c := NewCoordinator(durable, backup, testLogger())
	c.Initialize(context.Background())
	return c
}

// brokenDurable fails every call. It simulates a durable backend whose open
// succeeded but whose writes and reads throw.
type brokenDurable struct{}

func (brokenDurable) OrdersAll(context.Context) ([]model.Order, error) {
	return nil, ErrWriteFailed
}
func (brokenDurable) ExpensesAll(context.Context) ([]model.Expense, error) {
	return nil, ErrWriteFailed
}
func (brokenDurable) ReplaceOrders(context.Context, []model.Order) error     { return ErrWriteFailed }
func (brokenDurable) ReplaceExpenses(context.Context, []model.Expense) error { return ErrWriteFailed }
func (brokenDurable) ClearOrders(context.Context) error                      { return ErrWriteFailed }
func (brokenDurable) ClearExpenses(context.Context) error                    { return ErrWriteFailed }
func (brokenDurable) Close() error                                           { return nil }

// brokenBackup rejects the probe, simulating blocked storage. Only Probe is
// ever reached; the embedded nil pointer covers the rest of the interface.
type brokenBackup struct{ *FileStore }

func (brokenBackup) Probe() error { return ErrStorageUnavailable }

func TestCoordinator_Initialize_Modes(t *testing.T) {
	ctx := context.Background()

	c := newHealthyCoordinator(t)
	if c.Mode() != ModeBoth {
		t.Errorf("Mode = %v, want both", c.Mode())
	}

	c = NewCoordinator(newTestDurable(t), nil, testLogger())
	c.Initialize(ctx)
	if c.Mode() != ModeDurableOnly {
		t.Errorf("Mode = %v, want durable-only", c.Mode())
	}

	c = NewCoordinator(nil, newTestFileStore(t), testLogger())
	c.Initialize(ctx)
	if c.Mode() != ModeBackupOnly {
		t.Errorf("Mode = %v, want backup-only", c.Mode())
	}

	c = NewCoordinator(nil, nil, testLogger())
	c.Initialize(ctx)
	if c.Mode() != ModeNone {
		t.Errorf("Mode = %v, want none", c.Mode())
	}
	if c.Status() != StatusUnavailable {
		t.Errorf("Status = %v, want unavailable", c.Status())
	}
}

func TestCoordinator_Initialize_BackupProbeFailure(t *testing.T) {
	c := NewCoordinator(newTestDurable(t), brokenBackup{}, testLogger())
	c.Initialize(context.Background())
	if c.Mode() != ModeDurableOnly {
		t.Errorf("Mode = %v, want durable-only", c.Mode())
	}
}

func TestCoordinator_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newHealthyCoordinator(t)

	if st := c.SaveOrders(ctx, testOrders()); st != StatusOK {
		t.Fatalf("SaveOrders = %v", st)
	}
	if st := c.SaveExpenses(ctx, testExpenses()); st != StatusOK {
		t.Fatalf("SaveExpenses = %v", st)
	}

	c.Load(ctx)

	orders := c.Orders()
	if len(orders) != 2 || orders[0].Customer != "Ana" || orders[1].Total != 130 {
		t.Errorf("orders after load: %+v", orders)
	}
	expenses := c.Expenses()
	if len(expenses) != 2 || expenses[1].Amount != 410.50 {
		t.Errorf("expenses after load: %+v", expenses)
	}
	if c.Status() != StatusOK {
		t.Errorf("Status = %v", c.Status())
	}
}

func TestCoordinator_BackupFallback(t *testing.T) {
	ctx := context.Background()
	backup := newTestFileStore(t)

	// A prior session with both backends saved the collections.
	prior := NewCoordinator(newTestDurable(t), backup, testLogger())
	prior.Initialize(ctx)
	prior.SaveOrders(ctx, testOrders())
	prior.SaveExpenses(ctx, testExpenses())

	// A new session where the durable store failed to open.
	c := NewCoordinator(nil, backup, testLogger())
	c.Initialize(ctx)
	c.Load(ctx)

	if len(c.Orders()) != 2 {
		t.Errorf("backup fallback returned %d orders", len(c.Orders()))
	}
	if len(c.Expenses()) != 2 {
		t.Errorf("backup fallback returned %d expenses", len(c.Expenses()))
	}
	if c.Status() != StatusDegraded {
		t.Errorf("Status = %v, want degraded", c.Status())
	}
}

func TestCoordinator_DurableWriteFailure(t *testing.T) {
	ctx := context.Background()
	backup := newTestFileStore(t)
	c := NewCoordinator(brokenDurable{}, backup, testLogger())
	c.Initialize(ctx)

	st := c.SaveOrders(ctx, testOrders())
	if st != StatusDegraded {
		t.Errorf("SaveOrders = %v, want degraded", st)
	}

	// In-memory collection holds the saved values.
	if len(c.Orders()) != 2 {
		t.Errorf("orders in memory = %d", len(c.Orders()))
	}
	// Backup store took the write regardless of the durable failure.
	if got := backup.ReadOrders(); len(got) != 2 {
		t.Errorf("backup has %d orders", len(got))
	}
	if c.Status() != StatusDegraded {
		t.Errorf("Status = %v", c.Status())
	}
}

func TestCoordinator_DurableLoadFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	backup := newTestFileStore(t)
	backup.WriteOrders(testOrders())
	backup.WriteExpenses(testExpenses())

	c := NewCoordinator(brokenDurable{}, backup, testLogger())
	c.Initialize(ctx)
	c.Load(ctx)

	if len(c.Orders()) != 2 || len(c.Expenses()) != 2 {
		t.Errorf("load fallback: %d orders, %d expenses", len(c.Orders()), len(c.Expenses()))
	}
}

func TestCoordinator_AllBackendsFail(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(brokenDurable{}, nil, testLogger())
	c.Initialize(ctx)

	st := c.SaveOrders(ctx, testOrders())
	if st != StatusUnavailable {
		t.Errorf("SaveOrders = %v, want unavailable", st)
	}
	// Memory still holds the collection; it is just unsaved.
	if len(c.Orders()) != 2 {
		t.Errorf("orders in memory = %d", len(c.Orders()))
	}
	if c.Status() != StatusUnavailable {
		t.Errorf("Status = %v", c.Status())
	}
}

func TestCoordinator_Load_NoBackends(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(nil, nil, testLogger())
	c.Initialize(ctx)
	c.Load(ctx)

	if len(c.Orders()) != 0 || len(c.Expenses()) != 0 {
		t.Error("expected empty collections")
	}
}

func TestCoordinator_IndexRebuiltOnSave(t *testing.T) {
	ctx := context.Background()
	c := newHealthyCoordinator(t)

	c.SaveOrders(ctx, testOrders())
	if got := c.Index().Customers(); len(got) != 2 {
		t.Errorf("Customers = %v", got)
	}

	c.SaveOrders(ctx, nil)
	if got := c.Index().Customers(); len(got) != 0 {
		t.Errorf("Customers after empty save = %v", got)
	}
}

func TestCoordinator_Wipe(t *testing.T) {
	ctx := context.Background()
	durable := newTestDurable(t)
	backup := newTestFileStore(t)
	c := NewCoordinator(durable, backup, testLogger())
	c.Initialize(ctx)
	c.SaveOrders(ctx, testOrders())
	c.SaveExpenses(ctx, testExpenses())

	c.Wipe(ctx)

	if len(c.Orders()) != 0 || len(c.Expenses()) != 0 {
		t.Error("wipe left in-memory data")
	}

	// A fresh session sees empty collections from both backends.
	fresh := NewCoordinator(durable, backup, testLogger())
	fresh.Initialize(ctx)
	fresh.Load(ctx)
	if len(fresh.Orders()) != 0 || len(fresh.Expenses()) != 0 {
		t.Error("wipe left persisted data")
	}
	if got := backup.ReadOrders(); len(got) != 0 {
		t.Errorf("backup kept %d orders", len(got))
	}
}

func TestCoordinator_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	c := newHealthyCoordinator(t)
	c.SaveOrders(ctx, testOrders())

	st := c.ReplaceAll(ctx, testOrders()[:1], testExpenses())
	if st != StatusOK {
		t.Errorf("ReplaceAll = %v", st)
	}
	if len(c.Orders()) != 1 || len(c.Expenses()) != 2 {
		t.Errorf("ReplaceAll left %d orders, %d expenses", len(c.Orders()), len(c.Expenses()))
	}
}

func TestCoordinator_OrdersReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := newHealthyCoordinator(t)
	c.SaveOrders(ctx, testOrders())

	got := c.Orders()
	got[0].Customer = "mutated"

	if c.Orders()[0].Customer == "mutated" {
		t.Error("Orders exposed internal state")
	}
}

func TestCoordinator_StatusRecoversAfterCleanSave(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(brokenDurable{}, nil, testLogger())
	c.Initialize(ctx)
	c.SaveOrders(ctx, testOrders())
	if c.Status() != StatusUnavailable {
		t.Fatalf("Status = %v", c.Status())
	}

	// The unsaved flag clears once a later save reaches a backend; the
	// degraded flag is sticky for the session.
	c2 := NewCoordinator(brokenDurable{}, newTestFileStore(t), testLogger())
	c2.Initialize(ctx)
	c2.SaveOrders(ctx, testOrders())
	if c2.Status() != StatusDegraded {
		t.Errorf("Status = %v, want degraded", c2.Status())
	}
}
