package timestore

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-timestore/internal/inventory"
	"github.com/ariefcatur/go-timestore/internal/shop"
)

const recentSalesLimit = 5

type Dashboard struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalOrders   int             `json:"totalOrders"`
	TotalProducts int             `json:"totalProducts"`
	TotalClients  int             `json:"totalClients"`
	PendingUsers  int             `json:"pendingUsers"`
	RecentSales   []shop.Sale     `json:"recentSales"`
	LowStock      []shop.Product  `json:"lowStock"`
}

func (s *Store) Dashboard() Dashboard {
	sales := s.sales.snapshot()
	products := s.products.snapshot()

	d := Dashboard{
		TotalSales:    decimal.Zero,
		TotalOrders:   len(sales),
		TotalProducts: len(products),
		TotalClients:  len(s.clients.snapshot()),
		LowStock:      inventory.LowStock(products, inventory.LowStockThreshold),
	}
	for _, sale := range sales {
		d.TotalSales = d.TotalSales.Add(sale.Total)
	}
	for _, u := range s.users.snapshot() {
		if u.Status == shop.StatusPending {
			d.PendingUsers++
		}
	}

	sort.SliceStable(sales, func(i, j int) bool { return sales[i].Date.After(sales[j].Date) })
	if len(sales) > recentSalesLimit {
		sales = sales[:recentSalesLimit]
	}
	d.RecentSales = sales
	return d
}
