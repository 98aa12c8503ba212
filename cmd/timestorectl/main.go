package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ariefcatur/go-timestore/internal/app"
	"github.com/ariefcatur/go-timestore/internal/config"
	"github.com/ariefcatur/go-timestore/internal/inventory"
	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/timestore"
)

func main() {
	cliApp := &cli.App{
		Name:  "timestorectl",
		Usage: "administer a TimeStore backend",
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "create the default catalog when no products exist",
				Action: withBackend(seed),
			},
			{
				Name:  "users",
				Usage: "manage the user directory",
				Subcommands: []*cli.Command{
					{Name: "list", Usage: "list users", Action: withStore(listUsers)},
					{Name: "approve", Usage: "approve a user", ArgsUsage: "<id>", Action: withStore(setStatus(true))},
					{Name: "reject", Usage: "reject a user", ArgsUsage: "<id>", Action: withStore(setStatus(false))},
				},
			},
			{
				Name:  "stock",
				Usage: "inspect stock levels",
				Subcommands: []*cli.Command{
					{
						Name:   "low",
						Usage:  "list products under the threshold",
						Flags:  []cli.Flag{&cli.IntFlag{Name: "threshold", Value: inventory.LowStockThreshold}},
						Action: withBackend(lowStock),
					},
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.WithError(err).Fatal("timestorectl")
	}
}

func withBackend(fn func(ctx context.Context, c *cli.Context, b shop.Backend) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.SetupLogging()
		ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
		defer cancel()
		rt, err := app.Open(ctx, cfg, false, log.WithField("service", "timestorectl"))
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(ctx, c, rt.Backend)
	}
}

func withStore(fn func(ctx context.Context, c *cli.Context, s *timestore.Store) error) cli.ActionFunc {
	return withBackend(func(ctx context.Context, c *cli.Context, b shop.Backend) error {
		s, err := timestore.New(ctx, b, timestore.Options{Log: log.WithField("service", "timestorectl")})
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(ctx, c, s)
	})
}

func seed(ctx context.Context, c *cli.Context, b shop.Backend) error {
	existing, err := b.Products().List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Fprintf(c.App.Writer, "catalog already has %d products\n", len(existing))
		return nil
	}
	for _, p := range shop.DefaultCatalog() {
		if _, err := b.Products().Create(ctx, p); err != nil {
			return errors.Wrapf(err, "seed product %s", p.ID)
		}
	}
	fmt.Fprintf(c.App.Writer, "seeded %d products\n", len(shop.DefaultCatalog()))
	return nil
}

func listUsers(ctx context.Context, c *cli.Context, s *timestore.Store) error {
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
	for _, u := range s.Users() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.Status)
	}
	return tw.Flush()
}

func setStatus(approve bool) func(ctx context.Context, c *cli.Context, s *timestore.Store) error {
	return func(ctx context.Context, c *cli.Context, s *timestore.Store) error {
		id := c.Args().First()
		if id == "" {
			return cli.Exit("user id required", 2)
		}
		if approve {
			return s.Approve(ctx, id)
		}
		return s.Reject(ctx, id)
	}
}

func lowStock(ctx context.Context, c *cli.Context, b shop.Backend) error {
	products, err := b.Products().List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTOCK")
	for _, p := range inventory.LowStock(products, c.Int("threshold")) {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.ID, p.Name, p.Stock)
	}
	return tw.Flush()
}
