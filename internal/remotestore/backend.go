// Package remotestore keeps collections as documents in Postgres and
// propagates changes between processes through a Kafka change feed.
package remotestore

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

const (
	CollProducts  = "products"
	CollClients   = "clients"
	CollSuppliers = "suppliers"
	CollSales     = "sales"
	CollPurchases = "purchases"
	CollUsers     = "users"
)

type Deps struct {
	Docs     DocumentStore
	Creds    CredentialStore
	Tokens   TokenStore
	Feed     *Feed
	Secret   []byte
	TokenTTL time.Duration
	Log      *log.Entry
}

type Backend struct {
	products  *Collection[shop.Product]
	clients   *Collection[shop.Client]
	suppliers *Collection[shop.Supplier]
	sales     *Collection[shop.Sale]
	purchases *Collection[shop.Purchase]
	users     *Collection[shop.User]
	auth      *Auth
	sessions  *Sessions
}

func New(d Deps) *Backend {
	logger := d.Log
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	logger = logger.WithField("component", "remotestore")
	return &Backend{
		products:  NewCollection[shop.Product](CollProducts, d.Docs, d.Feed, logger),
		clients:   NewCollection[shop.Client](CollClients, d.Docs, d.Feed, logger),
		suppliers: NewCollection[shop.Supplier](CollSuppliers, d.Docs, d.Feed, logger),
		sales:     NewCollection[shop.Sale](CollSales, d.Docs, d.Feed, logger),
		purchases: NewCollection[shop.Purchase](CollPurchases, d.Docs, d.Feed, logger),
		users:     NewCollection[shop.User](CollUsers, d.Docs, d.Feed, logger),
		auth:      &Auth{Creds: d.Creds, Secret: d.Secret, TTL: d.TokenTTL},
		sessions:  &Sessions{Tokens: d.Tokens},
	}
}

func (b *Backend) Name() string                              { return "remote" }
func (b *Backend) Products() shop.Collection[shop.Product]   { return b.products }
func (b *Backend) Clients() shop.Collection[shop.Client]     { return b.clients }
func (b *Backend) Suppliers() shop.Collection[shop.Supplier] { return b.suppliers }
func (b *Backend) Sales() shop.Collection[shop.Sale]         { return b.sales }
func (b *Backend) Purchases() shop.Collection[shop.Purchase] { return b.purchases }
func (b *Backend) Users() shop.Collection[shop.User]         { return b.users }
func (b *Backend) Auth() shop.Authenticator                  { return b.auth }
func (b *Backend) Sessions() shop.SessionStore               { return b.sessions }
