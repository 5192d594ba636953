// Package report computes dashboard and reporting aggregates over the
// in-memory collections. Every function here is pure and total: it reads
// the collections it is given, never touches storage, and yields all-zero
// aggregates for empty input.
package report

import (
	"time"

	"github.com/mesalog/mesalog/internal/model"
)

// Summary is one bucket of the income/expense dashboard.
type Summary struct {
	Income  float64
	Expense float64
	Balance float64
	Tips    float64
}

// DayPoint is one day of the trailing chart series.
type DayPoint struct {
	Date    string
	Income  float64
	Expense float64
}

// Dashboard holds the scalar and series aggregates for a reference day.
type Dashboard struct {
	Today   Summary
	Week    Summary // Monday through Sunday of the reference date's ISO week.
	Month   Summary
	AllTime Summary

	PaidToday    float64
	PendingToday float64

	Series []DayPoint // 7 trailing days ending on the reference date.
}

// BuildDashboard computes all dashboard aggregates for the given reference
// day ("YYYY-MM-DD"). An unparsable reference day falls back to the current
// local day; the function never fails.
func BuildDashboard(orders []model.Order, expenses []model.Expense, today string) Dashboard {
	ref, err := time.Parse(model.DateLayout, today)
	if err != nil {
		today = model.Today()
		ref, _ = time.Parse(model.DateLayout, today)
	}
	weekStart, weekEnd := WeekBounds(today)
	monthPrefix := today[:7]

	var d Dashboard
	for _, o := range orders {
		if o.Date == today {
			d.Today.Income += o.Total
			d.Today.Tips += o.Tip
			if o.Paid {
				d.PaidToday += o.Total
			} else {
				d.PendingToday += o.Total
			}
		}
		if o.Date >= weekStart && o.Date <= weekEnd {
			d.Week.Income += o.Total
			d.Week.Tips += o.Tip
		}
		if len(o.Date) >= 7 && o.Date[:7] == monthPrefix {
			d.Month.Income += o.Total
			d.Month.Tips += o.Tip
		}
		d.AllTime.Income += o.Total
		d.AllTime.Tips += o.Tip
	}
	for _, e := range expenses {
		if e.Date == today {
			d.Today.Expense += e.Amount
		}
		if e.Date >= weekStart && e.Date <= weekEnd {
			d.Week.Expense += e.Amount
		}
		if len(e.Date) >= 7 && e.Date[:7] == monthPrefix {
			d.Month.Expense += e.Amount
		}
		d.AllTime.Expense += e.Amount
	}

	d.Today.Balance = d.Today.Income - d.Today.Expense
	d.Week.Balance = d.Week.Income - d.Week.Expense
	d.Month.Balance = d.Month.Income - d.Month.Expense
	d.AllTime.Balance = d.AllTime.Income - d.AllTime.Expense

	d.Series = make([]DayPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := ref.AddDate(0, 0, -i).Format(model.DateLayout)
		point := DayPoint{Date: day}
		for _, o := range orders {
			if o.Date == day {
				point.Income += o.Total
			}
		}
		for _, e := range expenses {
			if e.Date == day {
				point.Expense += e.Amount
			}
		}
		d.Series = append(d.Series, point)
	}
	return d
}

// WeekBounds returns the Monday and Sunday of the ISO week containing the
// given day. Dates compare lexically, so the bounds are inclusive strings.
func WeekBounds(date string) (start, end string) {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date, date
	}
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday belongs to the week it ends.
	}
	monday := t.AddDate(0, 0, 1-wd)
	return monday.Format(model.DateLayout), monday.AddDate(0, 0, 6).Format(model.DateLayout)
}
