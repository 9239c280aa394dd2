package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xenking/gymshop/internal/domain/product"
	"github.com/xenking/gymshop/internal/domain/receipt"
	"github.com/xenking/gymshop/internal/events"
	"github.com/xenking/gymshop/internal/handler"
	"github.com/xenking/gymshop/internal/session"
	"github.com/xenking/gymshop/internal/storage/postgres"
	"github.com/xenking/gymshop/pkg/health"
	"github.com/xenking/gymshop/pkg/httpmiddleware"
	"github.com/xenking/gymshop/web"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// The catalog lives in memory; the table copy backs receipt lookups.
	catalog := product.Default()
	if err := postgres.NewProductRepository(pool).Sync(ctx, catalog.List()); err != nil {
		return errors.Wrap(err, "sync catalog")
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	opts := receipt.Options{
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	}
	if cfg.AMQPURL != "" {
		publisher, conn, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			return errors.Wrap(err, "connect amqp")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				lg.Warn("Close amqp channel", zap.Error(err))
			}
			if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
				lg.Warn("Close amqp connection", zap.Error(err))
			}
		}()
		healthSvc.AddReadinessCheck("amqp", time.Second, func(context.Context) error {
			if conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		})
		opts.Notifier = publisher
		lg.Info("Publishing receipt events", zap.String("exchange", events.Exchange))
	}

	receiptService, err := receipt.NewService(catalog, postgres.NewReceiptRepository(pool), opts)
	if err != nil {
		return errors.Wrap(err, "create receipt service")
	}

	sessions, err := session.NewStore(session.Config{
		Name:   cfg.Session.Name,
		Secret: []byte(cfg.SessionSecret),
		MaxAge: cfg.Session.MaxAge,
		Secure: cfg.Session.Secure,
	})
	if err != nil {
		return errors.Wrap(err, "create session store")
	}

	h, err := handler.NewHandler(handler.Config{
		ImageBaseURL: cfg.ImageBaseURL,
		Templates:    web.Templates(),
		Static:       web.Static(),
	}, catalog, receiptService, sessions)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	// Health endpoints + storefront pages on one server.
	router := h.Routes()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.RequestID(),
			httpmiddleware.LogRequests(),
			httpmiddleware.Recovery(),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:     cfg.RateLimit.Max,
				Window:  cfg.RateLimit.Window,
				Methods: []string{http.MethodPost},
			}),
			httpmiddleware.Instrument("storefront", m.TracerProvider(), m.MeterProvider()),
		),
	}
	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
