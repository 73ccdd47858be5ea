package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lunchorder/api/internal/appdata"
	"github.com/lunchorder/api/internal/config"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/events"
	"github.com/lunchorder/api/internal/router"
	"github.com/lunchorder/api/internal/service"
	"github.com/lunchorder/api/internal/ws"
	"github.com/lunchorder/api/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		cfg = fileCfg
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	state := appdata.New(store)
	if err := state.Load(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	log.Printf("Loaded application state (%s store)", cfg.StoreDriver)

	hub := ws.NewHub()
	go hub.Run(ctx)

	pub := events.Fanout{hub}
	if cfg.RabbitMQURL != "" {
		rabbit, conn, err := events.DialRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			// The board still updates over websockets; only the broker feed is lost.
			log.Printf("WARNING: rabbitmq disabled: %v", err)
		} else {
			defer conn.Close()
			defer rabbit.Close()
			pub = append(pub, rabbit)
			log.Println("Publishing order events to RabbitMQ")
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, state, store, hub, pub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// openStore returns the configured data store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (database.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Println("WARNING: using in-memory store; data is lost on restart")
		store := database.NewMemoryStore()
		password := cfg.SeedPassword
		if password == "" {
			password = "password123"
			log.Println("WARNING: SEED_PASSWORD not set, main admin uses 'password123'")
		}
		admin, _, err := service.EnsureMainAdmin(ctx, store, password)
		if err != nil {
			return nil, nil, fmt.Errorf("seed main admin: %w", err)
		}
		log.Printf("Seeded user '%s' (ID: %s)", admin.Name, admin.ID)
		return store, func() {}, nil
	case "postgres":
		if cfg.AutoMigrate {
			if err := migrations.Up(cfg.DatabaseURL); err != nil {
				return nil, nil, err
			}
			log.Println("Database migrations applied")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		log.Println("Connected to database")
		return database.NewWithPool(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
