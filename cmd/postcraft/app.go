package main

import (
	"context"
	"fmt"
	"io"

	"github.com/PabloGalante/postcraft/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/postcraft/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/postcraft/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/postcraft/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/postcraft/internal/app/presets"
	"github.com/PabloGalante/postcraft/internal/app/refinement"
	"github.com/PabloGalante/postcraft/internal/config"
	"github.com/PabloGalante/postcraft/internal/domain"
	"github.com/PabloGalante/postcraft/internal/observability"
)

// app is the wired service plus whatever must be closed on exit.
type app struct {
	cfg   *config.Config
	svc   *refinement.Service
	close func() error
}

// newApp loads the config and wires generator, store and presets. Logs go to logOut.
func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	observability.Configure(logOut, cfg.LogLevel)
	log := observability.WithFields("mode", string(cfg.Mode))

	gen, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}
	log.Info("llm ready", "provider", cfg.Provider, "model", cfg.ModelName)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("storage ready", "backend", cfg.StorageBackend)

	catalog, err := presets.Load(cfg.PresetsFile)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	return &app{
		cfg:   cfg,
		svc:   refinement.NewService(gen, store, catalog),
		close: closeStore,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (domain.SessionStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageBackend {
	case "firestore":
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing Firestore store: %w", err)
		}
		return fs, fs.Close, nil

	case "sqlite":
		db, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing SQLite store: %w", err)
		}
		return db, db.Close, nil

	default:
		return memstore.NewSessionStore(), noop, nil
	}
}
