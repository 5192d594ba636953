// Package autocomplete derives the entry-suggestion sets from the order
// collection: distinct customers, servers, and dish descriptions.
//
// The index is purely derived and never persisted. It is rebuilt in full
// after every load and save rather than maintained incrementally, so it can
// never drift from the authoritative collection.
package autocomplete

import (
	"sort"

	"github.com/mesalog/mesalog/internal/model"
)

// Index holds the three deduplicated suggestion sets.
type Index struct {
	customers map[string]struct{}
	servers   map[string]struct{}
	dishes    map[string]struct{}
}

// Build recomputes the index from the order collection. Matching is
// case-sensitive and exact; orders or items with empty fields are skipped.
func Build(orders []model.Order) Index {
	idx := Index{
		customers: make(map[string]struct{}),
		servers:   make(map[string]struct{}),
		dishes:    make(map[string]struct{}),
	}
	for _, o := range orders {
		if o.Customer != "" {
			idx.customers[o.Customer] = struct{}{}
		}
		if o.Server != "" {
			idx.servers[o.Server] = struct{}{}
		}
		for _, item := range o.Items {
			if item.Description != "" {
				idx.dishes[item.Description] = struct{}{}
			}
		}
	}
	return idx
}

// Customers returns the distinct customer names, sorted.
func (i Index) Customers() []string { return sorted(i.customers) }

// Servers returns the distinct server names, sorted.
func (i Index) Servers() []string { return sorted(i.servers) }

// Dishes returns the distinct line-item descriptions, sorted.
func (i Index) Dishes() []string { return sorted(i.dishes) }

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
