package inventory

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// LowStockThreshold matches the dashboard's "low stock" panel.
const LowStockThreshold = 5

// Movement is one signed stock change: negative for sales, positive for purchases.
type Movement struct {
	ProductID string
	Qty       int
}

type Service struct {
	Products shop.Collection[shop.Product]
	Log      *log.Entry
}

func New(products shop.Collection[shop.Product], logger *log.Entry) *Service {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Service{Products: products, Log: logger.WithField("component", "inventory")}
}

// Apply adjusts stock once per movement, reading and writing each product
// separately. Unknown products are skipped. There is no rollback: an error
// leaves the earlier movements applied.
func (s *Service) Apply(ctx context.Context, moves []Movement) error {
	for _, m := range moves {
		p, ok, err := s.Products.Get(ctx, m.ProductID)
		if err != nil {
			return errors.Wrapf(err, "read product %s", m.ProductID)
		}
		if !ok {
			s.Log.WithField("product_id", m.ProductID).Warn("stock movement for unknown product skipped")
			continue
		}
		p.Stock += m.Qty
		if err := s.Products.Update(ctx, p); err != nil {
			return errors.Wrapf(err, "update stock %s", m.ProductID)
		}
		s.Log.WithFields(log.Fields{"product_id": p.ID, "change": m.Qty, "stock": p.Stock}).Debug("stock adjusted")
	}
	return nil
}

func SaleMovements(sale shop.Sale) []Movement {
	out := make([]Movement, 0, len(sale.Items))
	for _, it := range sale.Items {
		out = append(out, Movement{ProductID: it.ProductID, Qty: -it.Quantity})
	}
	return out
}

func PurchaseMovements(p shop.Purchase) []Movement {
	out := make([]Movement, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, Movement{ProductID: it.ProductID, Qty: it.Quantity})
	}
	return out
}

// LowStock returns products with stock below threshold, lowest first.
func LowStock(products []shop.Product, threshold int) []shop.Product {
	var out []shop.Product
	for _, p := range products {
		if p.Stock < threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}
