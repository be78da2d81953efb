package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chrisdamba/foodmarket/internal/clock"
	"github.com/chrisdamba/foodmarket/internal/events"
	"github.com/chrisdamba/foodmarket/internal/factories"
	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/output"
	"github.com/chrisdamba/foodmarket/internal/repositories"
	"github.com/chrisdamba/foodmarket/internal/repositories/cache"
	"github.com/chrisdamba/foodmarket/internal/repositories/fallback"
	"github.com/chrisdamba/foodmarket/internal/repositories/memory"
	"github.com/chrisdamba/foodmarket/internal/repositories/postgres"
	"github.com/chrisdamba/foodmarket/internal/service"
)

const (
	demoRestaurants   = 12
	demoWeeks         = 8
	demoOrdersPerWeek = 20
	demoLatePayers    = 0.3
)

type backend struct {
	cfg     *models.Config
	svc     *service.Service
	seeder  repositories.Seeder
	closers []func() error
}

type primaryStore interface {
	fallback.Primary
	repositories.Seeder
}

func newBackend(ctx context.Context, cfg *models.Config) (_ *backend, err error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	b := &backend{cfg: cfg}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	var (
		primary  primaryStore
		invoices repositories.InvoiceRepository
	)
	switch cfg.Store {
	case "memory":
		store := demoStore(cfg, time.Now().In(loc))
		primary, invoices = store, store
	default:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
		primary = postgres.NewStore(pool)

		if cfg.InvoiceDSN != "" {
			archive, err := output.OpenPostgresArchive(ctx, cfg.InvoiceDSN)
			if err != nil {
				return nil, err
			}
			b.closers = append(b.closers, archive.Close)
			invoices = archive
		}
	}
	b.seeder = primary

	var snapshots cache.Cache = cache.NewMemoryCache(cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		b.closers = append(b.closers, rc.Close)
		snapshots = rc
	}
	repo := fallback.New(primary, snapshots)

	out, err := output.New(cfg)
	if err != nil {
		return nil, err
	}
	exporter, err := output.NewInvoiceExporter(ctx, cfg)
	if err != nil {
		out.Close()
		return nil, err
	}

	b.svc = service.New(cfg, loc, service.Dependencies{
		Orders:      repo,
		Restaurants: repo,
		Invoices:    invoices,
		Clock:       clock.System{Location: loc},
		Publisher:   events.NewPublisher(out),
		Exporter:    exporter,
	})
	return b, nil
}

// demoStore fills an in-memory store with generated data so every command
// can be tried without a database.
func demoStore(cfg *models.Config, now time.Time) *memory.Store {
	gen := factories.NewGenerator(cfg.Seed, cfg.Catalog)
	restaurants, orders := gen.Dataset(demoRestaurants, factories.OrderHistory{
		Now:            now,
		Weeks:          demoWeeks,
		OrdersPerWeek:  demoOrdersPerWeek,
		LatePayerRatio: demoLatePayers,
	})

	store := memory.NewStore(nil, nil)
	ctx := context.Background()
	if err := store.BulkCreateRestaurants(ctx, restaurants); err != nil {
		log.Printf("[demo] %v", err)
	}
	if err := store.BulkCreateOrders(ctx, orders); err != nil {
		log.Printf("[demo] %v", err)
	}
	log.Printf("[demo] generated %d restaurants and %d orders", len(restaurants), len(orders))
	return store
}

func (b *backend) Close() {
	if b.svc != nil {
		if err := b.svc.Close(); err != nil {
			log.Printf("Error closing event output: %v", err)
		}
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Printf("Error closing backend: %v", err)
		}
	}
	b.closers = nil
}

func requireRestaurant(id string) error {
	if id == "" {
		return fmt.Errorf("--restaurant is required")
	}
	return nil
}
