// Package render formats orders, dashboards, and reports as plain text
// for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/mesalog/mesalog/internal/model"
	"github.com/mesalog/mesalog/internal/report"
	"github.com/mesalog/mesalog/internal/storage"
)

const lineWidth = 72

// Renderer carries the presentation settings shared by all output.
type Renderer struct {
	Name     string // restaurant name printed on headers
	Currency string
}

// Money formats an amount with the configured currency symbol.
func (r Renderer) Money(amount float64) string {
	return fmt.Sprintf("%s%.2f", r.Currency, amount)
}

func rule() string {
	return strings.Repeat("-", lineWidth)
}

// Ticket renders one order as a kitchen-style ticket.
func (r Renderer) Ticket(o model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rule())
	fmt.Fprintf(&b, "%s  %s  table %s\n", r.Name, o.Date, o.Table)
	if o.Customer != "" {
		fmt.Fprintf(&b, "customer: %s\n", o.Customer)
	}
	if o.Server != "" {
		fmt.Fprintf(&b, "server:   %s\n", o.Server)
	}
	fmt.Fprintf(&b, "%s\n", rule())
	for _, item := range o.Items {
		left := fmt.Sprintf("%dx %s", item.Quantity, item.Description)
		right := r.Money(item.Subtotal)
		fmt.Fprintf(&b, "%s%s%s\n", left, pad(left, right), right)
	}
	fmt.Fprintf(&b, "%s\n", rule())
	total := fmt.Sprintf("TOTAL %s", r.Money(o.Total))
	fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", lineWidth-len(total)), total)
	if o.Tip > 0 {
		tip := fmt.Sprintf("tip %s", r.Money(o.Tip))
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", lineWidth-len(tip)), tip)
	}
	fmt.Fprintf(&b, "status: %s\n", paidLabel(o.Paid))
	return b.String()
}

// OrderLine renders one order as a single listing row.
func (r Renderer) OrderLine(o model.Order) string {
	return fmt.Sprintf("%-14d %s  table %-6s %-8s %s",
		o.ID, o.Date, o.Table, paidLabel(o.Paid), r.Money(o.Total))
}

// ExpenseLine renders one expense as a single listing row.
func (r Renderer) ExpenseLine(e model.Expense) string {
	return fmt.Sprintf("%-14d %s  %-12s %-24s %s",
		e.ID, e.Date, e.Category, clip(e.Concept, 24), r.Money(e.Amount))
}

// Dashboard renders the aggregate snapshot.
func (r Renderer) Dashboard(d report.Dashboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — dashboard\n%s\n", r.Name, rule())
	fmt.Fprintf(&b, "%-10s %12s %12s %12s %10s\n", "period", "income", "expenses", "balance", "tips")
	for _, row := range []struct {
		label string
		s     report.Summary
	}{
		{"today", d.Today},
		{"week", d.Week},
		{"month", d.Month},
		{"all time", d.AllTime},
	} {
		fmt.Fprintf(&b, "%-10s %12s %12s %12s %10s\n",
			row.label, r.Money(row.s.Income), r.Money(row.s.Expense),
			r.Money(row.s.Balance), r.Money(row.s.Tips))
	}
	fmt.Fprintf(&b, "%s\n", rule())
	fmt.Fprintf(&b, "today: %s paid, %s pending\n", r.Money(d.PaidToday), r.Money(d.PendingToday))
	fmt.Fprintf(&b, "\nlast 7 days\n")
	for _, p := range d.Series {
		fmt.Fprintf(&b, "  %s  %10s  %s\n", p.Date, r.Money(p.Income), bar(p.Income, maxIncome(d.Series)))
	}
	return b.String()
}

// Weekly renders the weekly report.
func (r Renderer) Weekly(w report.Weekly) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — week %s to %s\n%s\n", r.Name, w.Start, w.End, rule())
	fmt.Fprintf(&b, "orders: %d   total: %s   daily average: %s\n",
		w.OrderCount, r.Money(w.Total), r.Money(w.DailyAverage))
	if w.TopServer != "" {
		fmt.Fprintf(&b, "top server: %s (%s)\n", w.TopServer, r.Money(w.TopServerRevenue))
	}
	if w.StarDish != "" {
		fmt.Fprintf(&b, "star dish: %s (x%d)\n", w.StarDish, w.StarDishCount)
	}
	fmt.Fprintf(&b, "%s\n", rule())
	for _, day := range w.Days {
		fmt.Fprintf(&b, "%s\n", day.Label)
		if len(day.Top) == 0 {
			fmt.Fprintf(&b, "    (no orders)\n")
			continue
		}
		for _, dish := range day.Top {
			fmt.Fprintf(&b, "    %dx %s\n", dish.Count, dish.Description)
		}
	}
	if len(w.FrequentCustomers) > 0 {
		fmt.Fprintf(&b, "%s\nfrequent customers\n", rule())
		for _, c := range w.FrequentCustomers {
			fmt.Fprintf(&b, "  %s (%d visits, %s)\n", c.Name, c.Visits, r.Money(c.Spent))
		}
	}
	return b.String()
}

// StatusLine renders the storage health indicator shown after writes.
func StatusLine(s storage.Status) string {
	switch s {
	case storage.StatusOK:
		return "storage: ok"
	case storage.StatusDegraded:
		return "storage: degraded (one backend failing, data is safe)"
	default:
		return "storage: UNAVAILABLE - recent changes may not be saved"
	}
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}
	return "pending"
}

func pad(left, right string) string {
	gap := lineWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return strings.Repeat(" ", gap)
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func bar(value, max float64) string {
	if max <= 0 {
		return ""
	}
	n := int(value / max * 30)
	return strings.Repeat("#", n)
}

func maxIncome(series []report.DayPoint) float64 {
	var max float64
	for _, p := range series {
		if p.Income > max {
			max = p.Income
		}
	}
	return max
}
