package report

import (
	"sort"
	"time"

	"github.com/mesalog/mesalog/internal/model"
)

// DishCount is a ranked dish with how many units were ordered.
type DishCount struct {
	Description string
	Count       int
}

// CustomerVisits summarizes a repeat customer within the week.
type CustomerVisits struct {
	Name   string
	Visits int
	Spent  float64
}

// DaySummary holds the top dishes for one weekday.
type DaySummary struct {
	Label string // "Monday" .. "Sunday"
	Top   []DishCount
}

// Weekly is the weekly operations report: top dishes per day, repeat
// customers, the top-grossing server, and the star dish.
type Weekly struct {
	Start, End string
	Days       [7]DaySummary // Monday-first.

	FrequentCustomers []CustomerVisits // ≥2 visits, top 5 by visits.
	TopServer         string
	TopServerRevenue  float64
	StarDish          string
	StarDishCount     int

	OrderCount   int
	Total        float64
	DailyAverage float64
}

var weekdayLabels = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// BuildWeekly computes the weekly report for the ISO week containing the
// reference day. Pure and total like BuildDashboard.
func BuildWeekly(orders []model.Order, today string) Weekly {
	start, end := WeekBounds(today)
	w := Weekly{Start: start, End: end}
	for i := range w.Days {
		w.Days[i].Label = weekdayLabels[i]
	}

	dishesByDay := [7]map[string]int{}
	allDishes := map[string]int{}
	customers := map[string]*CustomerVisits{}
	servers := map[string]float64{}

	for _, o := range orders {
		if o.Date < start || o.Date > end {
			continue
		}
		w.OrderCount++
		w.Total += o.Total

		day, err := time.Parse(model.DateLayout, o.Date)
		if err != nil {
			continue
		}
		idx := int(day.Weekday())
		if idx == 0 {
			idx = 7
		}
		idx-- // Monday-first.

		if dishesByDay[idx] == nil {
			dishesByDay[idx] = map[string]int{}
		}
		for _, item := range o.Items {
			dishesByDay[idx][item.Description] += item.Quantity
			allDishes[item.Description] += item.Quantity
		}

		if c, ok := customers[o.Customer]; ok {
			c.Visits++
			c.Spent += o.Total
		} else {
			customers[o.Customer] = &CustomerVisits{Name: o.Customer, Visits: 1, Spent: o.Total}
		}
		servers[o.Server] += o.Total
	}

	for i := range w.Days {
		w.Days[i].Top = topDishes(dishesByDay[i], 3)
	}

	for _, c := range customers {
		if c.Visits >= 2 {
			w.FrequentCustomers = append(w.FrequentCustomers, *c)
		}
	}
	sort.Slice(w.FrequentCustomers, func(i, j int) bool {
		a, b := w.FrequentCustomers[i], w.FrequentCustomers[j]
		if a.Visits != b.Visits {
			return a.Visits > b.Visits
		}
		return a.Name < b.Name
	})
	if len(w.FrequentCustomers) > 5 {
		w.FrequentCustomers = w.FrequentCustomers[:5]
	}

	for name, revenue := range servers {
		if revenue > w.TopServerRevenue || (revenue == w.TopServerRevenue && name < w.TopServer) {
			w.TopServer = name
			w.TopServerRevenue = revenue
		}
	}

	if star := topDishes(allDishes, 1); len(star) > 0 {
		w.StarDish = star[0].Description
		w.StarDishCount = star[0].Count
	}

	if w.OrderCount > 0 {
		w.DailyAverage = w.Total / 7
	}
	return w
}

func topDishes(counts map[string]int, n int) []DishCount {
	ranked := make([]DishCount, 0, len(counts))
	for desc, count := range counts {
		ranked = append(ranked, DishCount{Description: desc, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Description < ranked[j].Description
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
