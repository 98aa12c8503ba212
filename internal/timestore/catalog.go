package timestore

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// FeaturedLimit is how many featured products the home page shows.
const FeaturedLimit = 4

// Products returns the last confirmed snapshot of the catalog.
func (s *Store) Products() []shop.Product { return s.products.snapshot() }

func (s *Store) Product(id string) (shop.Product, bool) { return s.products.find(id) }

func (s *Store) CreateProduct(ctx context.Context, p shop.Product) (shop.Product, error) {
	created, err := s.backend.Products().Create(ctx, p)
	return created, errors.Wrap(err, "create product")
}

// UpdateProduct replaces the record with the same id; unknown ids are ignored.
func (s *Store) UpdateProduct(ctx context.Context, p shop.Product) error {
	return errors.Wrap(s.backend.Products().Update(ctx, p), "update product")
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return errors.Wrap(s.backend.Products().Delete(ctx, id), "delete product")
}

// Featured returns up to n featured products in catalog order.
func (s *Store) Featured(n int) []shop.Product {
	var out []shop.Product
	for _, p := range s.products.snapshot() {
		if len(out) == n {
			break
		}
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out
}

// Filter narrows the catalog view. Zero values do not filter.
type Filter struct {
	Category shop.Category
	Search   string
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
}

// FilterProducts is a pure projection of products; it never mutates its input.
func FilterProducts(products []shop.Product, f Filter) []shop.Product {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]shop.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Brand), term) {
			continue
		}
		if !f.MinPrice.IsZero() && p.Price.LessThan(f.MinPrice) {
			continue
		}
		if !f.MaxPrice.IsZero() && p.Price.GreaterThan(f.MaxPrice) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Search filters the current catalog.
func (s *Store) Search(f Filter) []shop.Product {
	return FilterProducts(s.products.snapshot(), f)
}
