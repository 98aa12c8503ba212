package timestore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

func (s *Store) Clients() []shop.Client { return s.clients.snapshot() }

func (s *Store) AddClient(ctx context.Context, c shop.Client) (shop.Client, error) {
	created, err := s.backend.Clients().Create(ctx, c)
	return created, errors.Wrap(err, "create client")
}

func (s *Store) UpdateClient(ctx context.Context, c shop.Client) error {
	return errors.Wrap(s.backend.Clients().Update(ctx, c), "update client")
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return errors.Wrap(s.backend.Clients().Delete(ctx, id), "delete client")
}

func (s *Store) Suppliers() []shop.Supplier { return s.suppliers.snapshot() }

func (s *Store) AddSupplier(ctx context.Context, sup shop.Supplier) (shop.Supplier, error) {
	created, err := s.backend.Suppliers().Create(ctx, sup)
	return created, errors.Wrap(err, "create supplier")
}

func (s *Store) UpdateSupplier(ctx context.Context, sup shop.Supplier) error {
	return errors.Wrap(s.backend.Suppliers().Update(ctx, sup), "update supplier")
}

func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	return errors.Wrap(s.backend.Suppliers().Delete(ctx, id), "delete supplier")
}
