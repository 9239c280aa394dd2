// Command seed-db prepares the storefront database: it applies the schema,
// syncs the product catalog and optionally imports historical receipts from
// JSON files (plain or gzip-compressed).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/gymshop/internal/domain/product"
	"github.com/xenking/gymshop/internal/domain/receipt"
	"github.com/xenking/gymshop/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		workers     int
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "number of receipt files imported concurrently")
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString("usage: seed-db [flags] [receipts.json|receipts.json.gz ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, workers, flag.Args()); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, workers int, receiptFiles []string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	catalog := product.Default()
	products := postgres.NewProductRepository(pool)
	if err := products.Sync(ctx, catalog.List()); err != nil {
		return errors.Wrap(err, "sync catalog")
	}
	stored, err := products.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	for _, p := range stored {
		slog.Info("product in store",
			slog.Int("id", p.ID),
			slog.String("name", p.Name),
			slog.String("price", p.Price.StringFixed(2)),
		)
	}

	if len(receiptFiles) == 0 {
		return nil
	}
	return importReceipts(ctx, postgres.NewReceiptRepository(pool), catalog, workers, receiptFiles)
}

// importReceipts loads every file concurrently and stores its receipts.
func importReceipts(ctx context.Context, repo receipt.Repository, catalog *product.Catalog, workers int, files []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for _, path := range files {
		g.Go(func() error {
			receipts, err := readReceipts(path, catalog)
			if err != nil {
				return err
			}
			for i := range receipts {
				if err := repo.Create(ctx, &receipts[i]); err != nil {
					return errors.Wrapf(err, "%s: store receipt %d", path, i)
				}
			}
			slog.Info("imported receipts", slog.String("path", path), slog.Int("count", len(receipts)))
			return nil
		})
	}
	return g.Wait()
}
