package state

import "tilemaster/internal/schema"

// LowStockThreshold is the quantity at or below which an item counts
// as low stock.
const LowStockThreshold = 20

// Stats is an aggregate snapshot of the inventory and the books.
type Stats struct {
	ItemCount     int     // distinct stock items
	UnitCount     int     // total units across all items
	TotalValue    float64 // sum of price * quantity
	TopCategory   string  // material with the most units, "" when empty
	LowStock      []schema.StockItem
	CustomerCount int
	StaffCount    int
	TotalRevenue  float64 // sum of customer totalSpent
}

// Stats computes an aggregate snapshot under the state lock.
func (a *App) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{
		ItemCount:     len(a.stock),
		CustomerCount: len(a.customers),
		StaffCount:    len(a.staff),
	}

	units := map[schema.Material]int{}
	for _, item := range a.stock {
		s.UnitCount += item.StockQuantity
		s.TotalValue += item.RetailValue()
		units[item.Type] += item.StockQuantity
		if item.StockQuantity <= LowStockThreshold {
			s.LowStock = append(s.LowStock, item)
		}
	}
	best := 0
	for mat, n := range units {
		if n > best || (n == best && string(mat) < s.TopCategory) {
			best = n
			s.TopCategory = string(mat)
		}
	}

	for _, rec := range a.customers {
		s.TotalRevenue += rec.TotalSpent
	}
	return s
}
