// Package timestore holds the shared application state of the storefront:
// catalog, user directory, clients, suppliers and the order ledger, plus the
// per-session cart and login state. A Store is built once at process start
// over a shop.Backend and handed by reference to every consumer.
package timestore

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-timestore/internal/inventory"
	"github.com/ariefcatur/go-timestore/internal/shop"
)

type Options struct {
	// ClearCartOnLogout empties the session cart on logout.
	ClearCartOnLogout bool
	// AdminPassword is used when the bootstrap admin has to be synthesized.
	AdminPassword string
	// SessionIdle is how long an unused session stays in memory. Its record
	// stays in the session store and is restored on the next request.
	SessionIdle time.Duration
	Now         func() time.Time
	Log         *log.Entry
}

const DefaultSessionIdle = 30 * time.Minute

type Store struct {
	backend shop.Backend
	opts    Options
	log     *log.Entry
	inv     *inventory.Service

	products  *mirror[shop.Product]
	clients   *mirror[shop.Client]
	suppliers *mirror[shop.Supplier]
	sales     *mirror[shop.Sale]
	purchases *mirror[shop.Purchase]
	users     *mirror[shop.User]

	mu       sync.Mutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
}

// New subscribes to every collection of b and makes sure the bootstrap admin
// exists. ctx only bounds start-up.
func New(ctx context.Context, b shop.Backend, opts Options) (*Store, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = shop.AdminPassword
	}
	if opts.Log == nil {
		opts.Log = log.NewEntry(log.StandardLogger())
	}
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = DefaultSessionIdle
	}
	s := &Store{
		backend:  b,
		opts:     opts,
		log:      opts.Log.WithFields(log.Fields{"component": "store", "backend": b.Name()}),
		inv:      inventory.New(b.Products(), opts.Log),
		sessions: map[string]*Session{},
		stop:     make(chan struct{}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { s.products, err = watch(gctx, b.Products()); return })
	g.Go(func() (err error) { s.clients, err = watch(gctx, b.Clients()); return })
	g.Go(func() (err error) { s.suppliers, err = watch(gctx, b.Suppliers()); return })
	g.Go(func() (err error) { s.sales, err = watch(gctx, b.Sales()); return })
	g.Go(func() (err error) { s.purchases, err = watch(gctx, b.Purchases()); return })
	g.Go(func() (err error) { s.users, err = watch(gctx, b.Users()); return })
	if err := g.Wait(); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "subscribe collections")
	}

	if err := s.EnsureAdmin(ctx); err != nil {
		s.Close()
		return nil, err
	}
	go s.sweepLoop(s.opts.SessionIdle / 2)
	s.log.Info("store ready")
	return s, nil
}

// Close stops every subscription and the session sweeper.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.products.close()
	s.clients.close()
	s.suppliers.close()
	s.sales.close()
	s.purchases.close()
	s.users.close()
}

func (s *Store) BackendName() string { return s.backend.Name() }

func (s *Store) now() time.Time { return s.opts.Now().UTC() }
