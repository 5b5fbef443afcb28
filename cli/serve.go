package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pedeai/configs"
	"pedeai/events"
	"pedeai/middlewares"
	"pedeai/mockstore"
	"pedeai/repository"
	"pedeai/routes"
	"pedeai/store"
	"pedeai/ws"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type ServeOptions struct {
	*RootOptions
	Port        string
	CartBackend string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. Tables are migrated and the admin account is seeded
on start.

Example:
  pedeai serve --port 8000
  pedeai serve --cart-backend mock`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			if cmd.Flags().Changed("port") {
				cfg.Port = opts.Port
			}
			if cmd.Flags().Changed("cart-backend") {
				cfg.CartBackend = opts.CartBackend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, opts.logger())
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (default from PORT)")
	cmd.Flags().StringVar(&opts.CartBackend, "cart-backend", "", "cart storage (db|mock)")
	return cmd
}

func serve(ctx context.Context, cfg *configs.Config, log *slog.Logger) error {
	slog.SetDefault(log)

	db, err := configs.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := configs.Migrate(db); err != nil {
		return err
	}
	if err := configs.SeedAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		return err
	}

	var carts store.CartStore
	switch cfg.CartBackend {
	case "mock":
		mock := mockstore.New(mockstore.NewMemoryKV(cfg.MockDelay), log)
		defer func() {
			waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = mock.Wait(waitCtx)
		}()
		carts = mock
	default:
		carts = repository.NewCartRepository(db)
	}
	log.Info("cart backend ready", "backend", cfg.CartBackend)

	hub := ws.NewOrderHub(log)
	go hub.Run(ctx)

	publishers := events.Multi{hub}
	if cfg.AMQPURL != "" {
		rabbit, err := events.NewRabbit(cfg.AMQPURL)
		if err != nil {
			// order events still reach websocket clients
			log.Warn("rabbitmq unavailable", "err", err)
		} else {
			defer rabbit.Close()
			publishers = append(publishers, rabbit)
		}
	}

	limiter := middlewares.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	go limiter.RunSweeper(ctx, time.Minute, 10*time.Minute)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, routes.Deps{
		DB:      db,
		Config:  cfg,
		Log:     log,
		Carts:   carts,
		Hub:     hub,
		Events:  publishers,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
