package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/itzfoxbrz/KamikaZL2/internal/config"
	"github.com/itzfoxbrz/KamikaZL2/internal/db"
	"github.com/itzfoxbrz/KamikaZL2/internal/diag"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/door"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/fence"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/pathfinding"
	"github.com/itzfoxbrz/KamikaZL2/internal/movement"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := config.DefaultConfigPath
	if p := os.Getenv(config.EnvConfigPath); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGeoServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	slog.Info("geoserver starting", "config", cfgPath, "log_level", level)

	store := geo.NewStore()
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("releasing geodata", "err", err)
		}
	}()
	if _, err := store.Load(ctx, cfg.Geodata.LoadOptions()); err != nil {
		return err
	}

	doors := door.NewTable()
	if cfg.Doors != "" {
		if doors, err = door.Load(cfg.Doors); err != nil {
			return err
		}
	}

	fences := fence.NewTable()
	var (
		fenceStore diag.FenceStore
		dbPing     diag.Pinger
	)
	if cfg.FencesFromDB {
		database, err := db.Open(ctx, cfg.Database.DSN(), db.Options{
			MaxConns:        cfg.Database.MaxConns,
			ApplyMigrations: true,
		})
		if err != nil {
			return err
		}
		defer database.Close()
		dbPing = database

		repo := database.Fences()
		n, err := repo.LoadInto(ctx, fences)
		if err != nil {
			return fmt.Errorf("loading fences: %w", err)
		}
		fenceStore = repo
		slog.Info("loaded fences", "count", n)
	}

	engine := geo.NewEngine(store, cfg.Engine(), geo.WithDoors(doors), geo.WithFences(fences))

	pfCfg, err := cfg.Pathfinding.Config()
	if err != nil {
		return err
	}
	paths := pathfinding.New(engine, pfCfg)
	slog.Info("geodata engine ready",
		"regions", store.LoadedCount(),
		"pathfinding", paths.Enabled(),
		"doors", doors.Len(),
		"fences", fences.Len(),
	)

	if !cfg.Diagnostics.Enabled {
		<-ctx.Done()
		slog.Info("shutting down")
		return nil
	}

	srv := diag.New(cfg.Diagnostics.BindAddress, cfg.Diagnostics.AllowedOrigins, diag.Deps{
		Engine:  engine,
		Paths:   paths,
		Moves:   movement.NewValidator(engine, paths),
		Doors:   doors,
		Fences:  fences,
		Persist: fenceStore,
		DB:      dbPing,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		return nil
	})
	return g.Wait()
}
