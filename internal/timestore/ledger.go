package timestore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/inventory"
	"github.com/ariefcatur/go-timestore/internal/shop"
)

const (
	DefaultClientName   = "Cliente General"
	AnonymousClientName = "Cliente Anónimo"
	DefaultSupplierName = "Proveedor General"
	UnknownSupplierID   = "unknown"
)

func (s *Store) Sales() []shop.Sale { return s.sales.snapshot() }

func (s *Store) Purchases() []shop.Purchase { return s.purchases.snapshot() }

// RecordSale appends sale to the ledger, then decrements stock once per item.
// The total is taken as given. A failing stock step does not undo the append.
func (s *Store) RecordSale(ctx context.Context, sale shop.Sale) (shop.Sale, error) {
	if sale.Date.IsZero() {
		sale.Date = s.now()
	}
	if sale.Status == "" {
		sale.Status = shop.SaleCompleted
	}
	s.warnTotal("sale", sale.Total, sale.ItemsTotal())

	created, err := s.backend.Sales().Create(ctx, sale)
	if err != nil {
		return shop.Sale{}, errors.Wrap(err, "append sale")
	}
	if err := s.inv.Apply(ctx, inventory.SaleMovements(created)); err != nil {
		return created, errors.Wrap(err, "adjust stock for sale")
	}
	s.log.WithFields(log.Fields{"sale_id": created.ID, "total": created.Total.String(), "items": len(created.Items)}).Info("sale recorded")
	return created, nil
}

// RecordPurchase appends purchase to the ledger, then increments stock once per item.
func (s *Store) RecordPurchase(ctx context.Context, p shop.Purchase) (shop.Purchase, error) {
	if p.Date.IsZero() {
		p.Date = s.now()
	}
	if p.Status == "" {
		p.Status = shop.PurchaseReceived
	}
	s.warnTotal("purchase", p.Total, p.ItemsTotal())

	created, err := s.backend.Purchases().Create(ctx, p)
	if err != nil {
		return shop.Purchase{}, errors.Wrap(err, "append purchase")
	}
	if err := s.inv.Apply(ctx, inventory.PurchaseMovements(created)); err != nil {
		return created, errors.Wrap(err, "adjust stock for purchase")
	}
	s.log.WithFields(log.Fields{"purchase_id": created.ID, "total": created.Total.String(), "items": len(created.Items)}).Info("purchase recorded")
	return created, nil
}

func (s *Store) warnTotal(kind string, given, computed decimal.Decimal) {
	if !given.Equal(computed) {
		s.log.WithFields(log.Fields{"kind": kind, "given": given.String(), "items": computed.String()}).Warn("total differs from item sum")
	}
}

// SaleItemFor snapshots the current name and price of a catalog product.
func (s *Store) SaleItemFor(productID string, qty int) (shop.SaleItem, error) {
	p, ok := s.products.find(productID)
	if !ok {
		return shop.SaleItem{}, errors.Wrapf(shop.ErrNotFound, "product %s", productID)
	}
	return shop.SaleItem{ProductID: p.ID, ProductName: p.Name, Quantity: qty, Price: p.Price}, nil
}

func (s *Store) PurchaseItemFor(productID string, qty int, cost decimal.Decimal) (shop.PurchaseItem, error) {
	p, ok := s.products.find(productID)
	if !ok {
		return shop.PurchaseItem{}, errors.Wrapf(shop.ErrNotFound, "product %s", productID)
	}
	return shop.PurchaseItem{ProductID: p.ID, ProductName: p.Name, Quantity: qty, Cost: cost}, nil
}

// NewSale builds an admin-entered sale. The client is linked when a client
// with exactly that name exists.
func (s *Store) NewSale(clientName string, items []shop.SaleItem) shop.Sale {
	sale := shop.Sale{
		Date:       s.now(),
		ClientName: clientName,
		Items:      items,
		Status:     shop.SaleCompleted,
	}
	if clientName == "" {
		sale.ClientName = DefaultClientName
	}
	for _, c := range s.clients.snapshot() {
		if c.Name == clientName {
			sale.ClientID = c.ID
			break
		}
	}
	sale.Total = sale.ItemsTotal()
	return sale
}

// NewPurchase builds a restocking purchase. The supplier is linked by exact
// name, otherwise the id is UnknownSupplierID.
func (s *Store) NewPurchase(supplierName string, items []shop.PurchaseItem) shop.Purchase {
	p := shop.Purchase{
		Date:         s.now(),
		SupplierID:   UnknownSupplierID,
		SupplierName: supplierName,
		Items:        items,
		Status:       shop.PurchaseReceived,
	}
	if supplierName == "" {
		p.SupplierName = DefaultSupplierName
	}
	for _, sup := range s.suppliers.snapshot() {
		if sup.Name == supplierName {
			p.SupplierID = sup.ID
			break
		}
	}
	p.Total = p.ItemsTotal()
	return p
}

// Checkout records the cart as a completed sale, then takes the sold units
// out of the cart and closes the cart view. Lines added while the sale is
// being recorded stay in the cart.
func (ss *Session) Checkout(ctx context.Context, cardName string) (shop.Sale, error) {
	ss.checkout.Lock()
	defer ss.checkout.Unlock()

	ss.mu.Lock()
	if ss.cart.Len() == 0 {
		ss.mu.Unlock()
		return shop.Sale{}, shop.ErrEmptyCart
	}
	sale := shop.Sale{
		Date:       ss.store.now(),
		ClientName: cardName,
		Total:      ss.cart.Subtotal(),
		Status:     shop.SaleCompleted,
	}
	if ss.user != nil {
		sale.ClientID = ss.user.ID
		if sale.ClientName == "" {
			sale.ClientName = ss.user.Name
		}
	}
	if sale.ClientName == "" {
		sale.ClientName = AnonymousClientName
	}
	for _, l := range ss.cart.Lines() {
		sale.Items = append(sale.Items, shop.SaleItem{
			ProductID:   l.ID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
	}
	ss.mu.Unlock()

	created, err := ss.store.RecordSale(ctx, sale)
	if err != nil {
		return created, err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.cart.Deduct(sale.Items)
	ss.cartOpen = false
	return created, ss.saveLocked(ctx)
}
