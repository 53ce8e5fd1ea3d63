// Package shipping prices delivery from a per-city table with a flat
// fallback. Cost is a pure function; the settlement path relies on getting
// the same answer it got at checkout time.
package shipping

import (
	"fmt"
	"strconv"
	"strings"
)

type Table struct {
	costs       map[string]int64
	defaultCost int64
}

func NewTable(costs map[string]int64, defaultCost int64) *Table {
	normalized := make(map[string]int64, len(costs))
	for city, cost := range costs {
		normalized[normalizeCity(city)] = cost
	}
	return &Table{costs: normalized, defaultCost: defaultCost}
}

// ParseTable reads "Bogota=800000,Medellin=1200000" style configuration.
func ParseTable(raw string, defaultCost int64) (*Table, error) {
	costs := make(map[string]int64)
	if raw != "" {
		for _, pair := range strings.Split(raw, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			city, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("shipping table entry %q: want city=cents", pair)
			}
			cents, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil || cents < 0 {
				return nil, fmt.Errorf("shipping table entry %q: bad amount", pair)
			}
			costs[strings.TrimSpace(city)] = cents
		}
	}
	return NewTable(costs, defaultCost), nil
}

// Cost returns the delivery price in minor units. An empty city means no
// shipping block was provided and costs nothing extra here.
func (t *Table) Cost(_ int64, city string) int64 {
	if city == "" {
		return 0
	}
	if cost, ok := t.costs[normalizeCity(city)]; ok {
		return cost
	}
	return t.defaultCost
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
