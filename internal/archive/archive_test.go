package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesalog/mesalog/internal/model"
)

func TestExportImport_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	orders := []model.Order{
		{
			ID: 1, Date: "2025-03-12", Table: "4", Customer: "Ana", Server: "Luis",
			Items: []model.LineItem{{ID: 1, Description: "Mole", Quantity: 1, UnitPrice: 110, Subtotal: 110}},
			Total: 110,
		},
	}
	expenses := []model.Expense{
		{ID: 2, Date: "2025-03-12", Category: "rent", Concept: "March rent", Amount: 5000},
	}

	if err := Export(path, orders, expenses); err != nil {
		t.Fatal(err)
	}

	doc, err := Import(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != Version {
		t.Errorf("Version = %d", doc.Version)
	}
	if len(doc.Orders) != 1 || doc.Orders[0].Items[0].Description != "Mole" {
		t.Errorf("orders lost: %+v", doc.Orders)
	}
	if len(doc.Expenses) != 1 || doc.Expenses[0].Amount != 5000 {
		t.Errorf("expenses lost: %+v", doc.Expenses)
	}
}

func TestExport_EmptyCollectionsWriteArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := Export(path, nil, nil); err != nil {
		t.Fatal(err)
	}

	// An export of empty collections must still import cleanly.
	doc, err := Import(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Orders) != 0 || len(doc.Expenses) != 0 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestImport_MissingExpensesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	content := `{"version": 2, "date": "2025-03-12", "orders": []}`
	os.WriteFile(path, []byte(content), 0o644)

	_, err := Import(path)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error %v is not ErrMalformed", err)
	}
}

func TestImport_MissingOrdersRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	content := `{"version": 2, "date": "2025-03-12", "expenses": []}`
	os.WriteFile(path, []byte(content), 0o644)

	if _, err := Import(path); !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v", err)
	}
}

func TestImport_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	os.WriteFile(path, []byte("not json at all"), 0o644)

	if _, err := Import(path); !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v", err)
	}
}

func TestImport_MissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error")
	}
	// A missing file is an I/O error, not a malformed document.
	if errors.Is(err, ErrMalformed) {
		t.Errorf("missing file misreported as malformed: %v", err)
	}
}
