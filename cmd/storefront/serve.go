package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logging"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port, backend string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.HTTPPort = port
			}
			if backend != "" {
				cfg.SessionBackend = backend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (or set HTTP_PORT)")
	cmd.Flags().StringVar(&backend, "sessions", "", "Session backend: memory or redis (or set SESSION_BACKEND)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	products, closeSource, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource.Close()

	sessions, closeSessions, err := openSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	renderer, err := view.New()
	if err != nil {
		return err
	}

	handler := h.NewHandler(h.HandlerParams{
		Catalog:     products,
		Sessions:    sessions,
		Renderer:    renderer,
		Logger:      logger.Named("http"),
		Timeout:     cfg.RequestTimeout,
		MaxBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h.NewRouter(handler, logger.Named("access"), cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("storefront starting",
			zap.String("addr", srv.Addr),
			zap.String("sessions", cfg.SessionBackend),
			zap.Int("products", len(products.Products())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if cfg.CatalogRefresh > 0 {
		g.Go(func() error {
			products.Run(gctx, cfg.CatalogRefresh)
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

// loadCatalog opens the configured source and runs the first load. A failed
// load is not fatal: the service has already logged it and the page renders
// with an empty product list.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*catalog.Service, io.Closer, error) {
	source, closer, err := catalog.NewSource(cfg.CatalogSource)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog source: %w", err)
	}

	products := catalog.NewService(source, logger.Named("catalog").With(zap.String("source", cfg.CatalogSource)), cfg.CatalogTimeout)
	_, _ = products.Load(ctx)
	return products, closer, nil
}

// openSessions builds the configured session store. The returned func
// releases it and must run after the server has drained.
func openSessions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

		return session.NewRedisStore(client, cfg.SessionTTL), func() { client.Close() }, nil

	default:
		store := session.NewMemoryStore(cfg.SessionTTL, session.CleanupInterval)
		return store, store.Close, nil
	}
}
