// Package model defines the order and expense records that mesalog persists.
//
// Both storage backends store the same JSON shapes defined here. Validation
// is the only error class that blocks a user action; records that pass
// Validate are trusted on read and never re-checked by the storage layer.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation marks a record rejected before it reaches storage.
var ErrValidation = errors.New("validation failed")

// DateLayout is the calendar-day key used for range queries.
const DateLayout = "2006-01-02"

// LineItem is one ordered item within an Order. Its ID is scoped to the
// parent order and has no independent lifecycle.
type LineItem struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
}

// Order is a single table's recorded transaction.
type Order struct {
	ID       int64      `json:"id"`
	Date     string     `json:"date"`
	Table    string     `json:"table"`
	Customer string     `json:"customer"`
	Server   string     `json:"server"`
	Items    []LineItem `json:"items"`
	Total    float64    `json:"total"`
	Paid     bool       `json:"paid"`
	Tip      float64    `json:"tip,omitempty"`
}

// Expense is a standalone operating cost record, unrelated to orders.
type Expense struct {
	ID       int64   `json:"id"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Concept  string  `json:"concept"`
	Amount   float64 `json:"amount"`
}

// Categories is the fixed label set for expenses.
var Categories = []string{
	"ingredients",
	"utilities",
	"rent",
	"salaries",
	"supplies",
	"other",
}

// ValidCategory reports whether c is in the fixed label set.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NewID returns a time-derived record identifier.
func NewID() int64 {
	return time.Now().UnixMilli()
}

// Today returns the current calendar day in the local timezone.
func Today() string {
	return time.Now().Format(DateLayout)
}

// Normalize recomputes each line subtotal and the order total so the total
// always equals the sum of line-item subtotals at save time.
func (o *Order) Normalize() {
	var total float64
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].UnitPrice * float64(o.Items[i].Quantity)
		total += o.Items[i].Subtotal
	}
	o.Total = total
}

// Validate checks required fields and positivity constraints.
func (o *Order) Validate() error {
	if err := validDate(o.Date); err != nil {
		return err
	}
	if strings.TrimSpace(o.Table) == "" {
		return fmt.Errorf("%w: table is required", ErrValidation)
	}
	if strings.TrimSpace(o.Customer) == "" {
		return fmt.Errorf("%w: customer is required", ErrValidation)
	}
	if strings.TrimSpace(o.Server) == "" {
		return fmt.Errorf("%w: server is required", ErrValidation)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}
	for i, item := range o.Items {
		if strings.TrimSpace(item.Description) == "" {
			return fmt.Errorf("%w: item %d has no description", ErrValidation, i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %q quantity must be positive", ErrValidation, item.Description)
		}
		if item.UnitPrice <= 0 {
			return fmt.Errorf("%w: item %q unit price must be positive", ErrValidation, item.Description)
		}
	}
	if o.Tip < 0 {
		return fmt.Errorf("%w: tip cannot be negative", ErrValidation)
	}
	return nil
}

// Validate checks required fields, the fixed category set, and positivity.
func (e *Expense) Validate() error {
	if err := validDate(e.Date); err != nil {
		return err
	}
	if !ValidCategory(e.Category) {
		return fmt.Errorf("%w: unknown category %q (one of: %s)",
			ErrValidation, e.Category, strings.Join(Categories, ", "))
	}
	if strings.TrimSpace(e.Concept) == "" {
		return fmt.Errorf("%w: concept is required", ErrValidation)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return nil
}

func validDate(date string) error {
	if date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrValidation, date)
	}
	return nil
}
