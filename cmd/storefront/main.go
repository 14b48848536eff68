package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/go-storefront-client/internal/api"
	"github.com/flicky/go-storefront-client/internal/cart"
	"github.com/flicky/go-storefront-client/internal/checkout"
	"github.com/flicky/go-storefront-client/internal/config"
	"github.com/flicky/go-storefront-client/internal/event"
	"github.com/flicky/go-storefront-client/internal/orders"
	"github.com/flicky/go-storefront-client/internal/session"
	"github.com/flicky/go-storefront-client/internal/storage"
)

const usage = `usage: storefront <command> [flags]

commands:
  products              list the catalogue
  product <id>          show one product
  register              create an account and log in
  login                 authenticate and persist the session
  logout                clear the persisted session
  whoami                show the current session
  cart add <id>         add a product to the cart
  cart rm <id>          remove a product from the cart
  cart show             show cart contents and total
  cart clear            empty the cart
  checkout              submit the cart as an order
  orders                list past orders, newest first
  watch                 follow cart/session changes from other processes
`

type app struct {
	watcher  storage.Watcher
	bus      *event.Bus
	sessions *session.Store
	carts    *cart.Store
	client   *api.Client
	checkout *checkout.Orchestrator
	history  *orders.History
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error("init", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a.sessions.Restore(ctx)
	a.carts.Restore(ctx)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	var (
		store   storage.Store
		watcher storage.Watcher
	)
	switch cfg.State.Backend {
	case "redis":
		rs := storage.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
		store, watcher = rs, rs
	case "file":
		dir := cfg.State.Dir
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return nil, fmt.Errorf("resolve state dir: %w", err)
			}
			dir = filepath.Join(base, "storefront")
		}
		fs, err := storage.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		store, watcher = fs, fs
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}

	bus := event.NewBus()
	sessions := session.NewStore(store, bus, log)
	carts := cart.NewStore(store, bus, log)
	client := api.New(cfg.API, log)

	return &app{
		watcher:  watcher,
		bus:      bus,
		sessions: sessions,
		carts:    carts,
		client:   client,
		checkout: checkout.New(carts, sessions, client, log),
		history:  orders.NewHistory(sessions, client, log),
	}, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "products":
		return a.cmdProducts(ctx)
	case "product":
		return a.cmdProduct(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "cart":
		return a.cmdCart(ctx, args)
	case "checkout":
		return a.cmdCheckout(ctx)
	case "orders":
		return a.cmdOrders(ctx, args)
	case "watch":
		return a.cmdWatch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
