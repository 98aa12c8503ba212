package localstore

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/redisx"
	"github.com/ariefcatur/go-timestore/internal/shop"
)

type Backend struct {
	products  *Collection[shop.Product]
	clients   *Collection[shop.Client]
	suppliers *Collection[shop.Supplier]
	sales     *Collection[shop.Sale]
	purchases *Collection[shop.Purchase]
	users     *Collection[shop.User]
	auth      *DirectoryAuth
	sessions  *Sessions
}

// Open loads every collection from kv. Only the user directory follows
// writes made by other processes.
func Open(ctx context.Context, kv KV, logger *log.Entry) (*Backend, error) {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	logger = logger.WithField("component", "localstore")

	b := &Backend{sessions: &Sessions{kv: kv}}
	var err error
	if b.products, err = open(ctx, kv, redisx.KeyProducts, collectionOpts[shop.Product]{seed: shop.DefaultCatalog()}, logger); err != nil {
		return nil, err
	}
	if b.clients, err = open(ctx, kv, redisx.KeyClients, collectionOpts[shop.Client]{}, logger); err != nil {
		return nil, err
	}
	if b.suppliers, err = open(ctx, kv, redisx.KeySuppliers, collectionOpts[shop.Supplier]{}, logger); err != nil {
		return nil, err
	}
	if b.sales, err = open(ctx, kv, redisx.KeySales, collectionOpts[shop.Sale]{}, logger); err != nil {
		return nil, err
	}
	if b.purchases, err = open(ctx, kv, redisx.KeyPurchases, collectionOpts[shop.Purchase]{}, logger); err != nil {
		return nil, err
	}
	if b.users, err = open(ctx, kv, redisx.KeyUsers, collectionOpts[shop.User]{watch: true}, logger); err != nil {
		return nil, err
	}
	b.auth = &DirectoryAuth{Users: b.users}
	logger.Info("local backend opened")
	return b, nil
}

// Close stops the external change watch.
func (b *Backend) Close() { b.users.close() }

func (b *Backend) Name() string                              { return "local" }
func (b *Backend) Products() shop.Collection[shop.Product]   { return b.products }
func (b *Backend) Clients() shop.Collection[shop.Client]     { return b.clients }
func (b *Backend) Suppliers() shop.Collection[shop.Supplier] { return b.suppliers }
func (b *Backend) Sales() shop.Collection[shop.Sale]         { return b.sales }
func (b *Backend) Purchases() shop.Collection[shop.Purchase] { return b.purchases }
func (b *Backend) Users() shop.Collection[shop.User]         { return b.users }
func (b *Backend) Auth() shop.Authenticator                  { return b.auth }
func (b *Backend) Sessions() shop.SessionStore               { return b.sessions }
