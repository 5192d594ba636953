package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFileStore_Probe(t *testing.T) {
	s := newTestFileStore(t)
	if err := s.Probe(); err != nil {
		t.Fatal(err)
	}

	// Probe must not leave debris behind.
	entries, _ := os.ReadDir(s.dir)
	if len(entries) != 0 {
		t.Errorf("probe left %d files", len(entries))
	}
}

func TestFileStore_OrdersRoundTrip(t *testing.T) {
	s := newTestFileStore(t)

	want := testOrders()
	if err := s.WriteOrders(want); err != nil {
		t.Fatal(err)
	}

	got := s.ReadOrders()
	if len(got) != len(want) {
		t.Fatalf("ReadOrders = %d, want %d", len(got), len(want))
	}
	if got[0].Customer != want[0].Customer || got[0].Total != want[0].Total {
		t.Errorf("order fields lost: %+v", got[0])
	}
	if len(got[1].Items) != 2 {
		t.Errorf("line items lost: %+v", got[1].Items)
	}
}

func TestFileStore_ExpensesRoundTrip(t *testing.T) {
	s := newTestFileStore(t)

	if err := s.WriteExpenses(testExpenses()); err != nil {
		t.Fatal(err)
	}
	got := s.ReadExpenses()
	if len(got) != 2 {
		t.Fatalf("ReadExpenses = %d", len(got))
	}
	if got[0].Concept != "Maiz" {
		t.Errorf("expense fields lost: %+v", got[0])
	}
}

func TestFileStore_ReadAbsentKey(t *testing.T) {
	s := newTestFileStore(t)

	if got := s.ReadOrders(); len(got) != 0 {
		t.Errorf("absent key returned %d orders", len(got))
	}
	if got := s.ReadExpenses(); len(got) != 0 {
		t.Errorf("absent key returned %d expenses", len(got))
	}
}

func TestFileStore_ReadCorruptBlob(t *testing.T) {
	s := newTestFileStore(t)

	path := filepath.Join(s.dir, KeyOrders+".json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := s.ReadOrders(); len(got) != 0 {
		t.Errorf("corrupt blob returned %d orders, want empty", len(got))
	}
}

func TestFileStore_WriteOverwritesWholeKey(t *testing.T) {
	s := newTestFileStore(t)

	s.WriteOrders(testOrders())
	s.WriteOrders(testOrders()[:1])

	if got := s.ReadOrders(); len(got) != 1 {
		t.Errorf("ReadOrders = %d, want 1", len(got))
	}
}

func TestFileStore_Clear(t *testing.T) {
	s := newTestFileStore(t)

	s.WriteOrders(testOrders())
	s.WriteExpenses(testExpenses())
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}

	if len(s.ReadOrders()) != 0 || len(s.ReadExpenses()) != 0 {
		t.Error("clear left data behind")
	}
}

func TestFileStore_Clear_Empty(t *testing.T) {
	s := newTestFileStore(t)
	// Clearing a store with no keys should not error.
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
}

func TestFileStore_Values(t *testing.T) {
	s := newTestFileStore(t)

	if got := s.ReadValue(KeyLastExport); got != "" {
		t.Errorf("ReadValue = %q, want empty", got)
	}
	if err := s.WriteValue(KeyLastExport, "2025-03-12"); err != nil {
		t.Fatal(err)
	}
	if got := s.ReadValue(KeyLastExport); got != "2025-03-12" {
		t.Errorf("ReadValue = %q", got)
	}
}

func TestFileStore_ImplementsBackend(t *testing.T) {
	var _ BackupBackend = (*FileStore)(nil)
}
