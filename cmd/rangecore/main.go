package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rangeops/rangecore/pkg/api"
	"github.com/rangeops/rangecore/pkg/asset"
	"github.com/rangeops/rangecore/pkg/metrics"
	"github.com/rangeops/rangecore/pkg/replication"
	"github.com/rangeops/rangecore/pkg/roster"
	"github.com/rangeops/rangecore/pkg/server"
	"github.com/rangeops/rangecore/pkg/team"
	"github.com/rangeops/rangecore/pkg/topology"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "Override listen port")
	backend := flag.String("backend", "", "Override store backend (memory, file, postgres, s3)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Store.Backend, err)
	}
	defer closeStore()
	log.Printf("Topology store backend: %s", cfg.Store.Backend)

	reg := metrics.DefaultRegistry()

	if cfg.Replication.Enabled {
		store, err = wireReplication(cfg, store, reg)
		if err != nil {
			log.Fatalf("Failed to start replication: %v", err)
		}
	}

	assets := asset.NewStore()
	users := roster.NewUserStore()
	if err := bootstrapAdmin(users); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	srv, err := api.NewServer(cfg, store, assets, users, reg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	gs := server.NewGracefulServer(fmt.Sprintf(":%d", cfg.Port), srv.Handler())
	if err := gs.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig reads the config file, or falls back to env-driven defaults
// when no file is given.
func loadConfig(path string) (*api.Config, error) {
	if path != "" {
		return api.LoadConfig(path)
	}

	cfg := &api.Config{
		JWTSecret: os.Getenv("RANGECORE_JWT_SECRET"),
	}
	cfg.Normalize()
	return cfg, nil
}

// buildStore constructs the configured topology store backend.
func buildStore(cfg *api.Config) (topology.Store, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		s := topology.NewMemoryStore()
		return s, func() { s.Close() }, nil
	case "file":
		s, err := topology.NewFileStore(cfg.Store.FileDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := topology.NewPGStore(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := topology.NewS3Store(ctx, cfg.Store.S3)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// wireReplication attaches the change feed to the store: a publisher when
// a publish address is set, a background subscriber when a subscribe
// address is set.
func wireReplication(cfg *api.Config, store topology.Store, reg *metrics.Registry) (topology.Store, error) {
	inner := store

	if addr := cfg.Replication.PublishAddr; addr != "" {
		pub, err := replication.NewPublisher(addr, reg)
		if err != nil {
			return nil, err
		}
		store = replication.NewPublishingStore(inner, pub)
		log.Printf("Replication: publishing topology changes on %s", addr)
	}

	if addr := cfg.Replication.SubscribeAddr; addr != "" {
		// Feed documents apply to the inner store: an applied document
		// must not be re-broadcast, or two mutually-subscribed nodes
		// would echo the same document back and forth.
		sub, err := replication.NewSubscriber(addr, inner, reg)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := sub.Run(context.Background()); err != nil && err != context.Canceled {
				log.Printf("Replication subscriber stopped: %v", err)
			}
		}()
		log.Printf("Replication: applying topology changes from %s", addr)
	}

	return store, nil
}

// bootstrapAdmin creates the initial admin account from the environment
// if the roster is empty.
func bootstrapAdmin(users *roster.UserStore) error {
	password := os.Getenv("RANGECORE_ADMIN_PASSWORD")
	if password == "" {
		log.Printf("RANGECORE_ADMIN_PASSWORD not set; starting with an empty roster")
		return nil
	}

	username := os.Getenv("RANGECORE_ADMIN_USER")
	if username == "" {
		username = "admin"
	}

	if _, err := users.CreateUser(username, password, team.RoleAdmin); err != nil {
		return err
	}
	log.Printf("Bootstrapped admin account %q", username)
	return nil
}
