// Package main runs the loot list Telnet server: players walk a zone, spot
// items and mark them for pickup from the zone loot list.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lootlist/internal/config"
	"github.com/cory-johannsen/lootlist/internal/frontend/handlers"
	"github.com/cory-johannsen/lootlist/internal/frontend/telnet"
	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/session"
	"github.com/cory-johannsen/lootlist/internal/game/world"
	"github.com/cory-johannsen/lootlist/internal/observability"
	"github.com/cory-johannsen/lootlist/internal/scripting"
	"github.com/cory-johannsen/lootlist/internal/server"
	"github.com/cory-johannsen/lootlist/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/lootlist.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting loot list server",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("database", cfg.Database.Enabled),
		zap.String("mod_version", cfg.Loot.ModVersion),
	)

	items, err := inventory.LoadRegistry(cfg.Content.ItemsDir, cfg.Content.LiquidsDir)
	if err != nil {
		logger.Fatal("loading item definitions", zap.Error(err))
	}
	zones, err := world.LoadZonesFromDir(cfg.Content.ZonesDir, items)
	if err != nil {
		logger.Fatal("loading zones", zap.Error(err))
	}
	worldMgr, err := world.NewManager(zones)
	if err != nil {
		logger.Fatal("indexing zones", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("items", len(items.AllItems())),
		zap.Int("liquids", len(items.AllLiquids())),
		zap.Int("zones", worldMgr.ZoneCount()),
	)

	scripts := loadScripts(cfg.Content, items, zones, logger)
	defer scripts.Close()

	ctx := context.Background()
	deps := handlers.GameHandlerDeps{
		Config:   cfg,
		Items:    items,
		World:    worldMgr,
		Sessions: session.NewManager(),
		Scripts:  scripts,
		Logger:   logger,
	}

	lifecycle := server.NewLifecycle(logger)

	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		deps.Accounts = postgres.NewAccountRepository(pool.DB())
		deps.States = postgres.NewLootFinderRepository(pool.DB())

		monitorCtx, stopMonitor := context.WithCancel(ctx)
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				return pool.Monitor(monitorCtx, 30*time.Second, 5*time.Second, observability.Component(logger, "postgres"))
			},
			StopFn: func() {
				stopMonitor()
				pool.Close()
			},
		})
	}

	gameHandler, err := handlers.NewGameHandler(deps)
	if err != nil {
		logger.Fatal("building game handler", zap.Error(err))
	}
	telnetAcceptor := telnet.NewAcceptor(cfg.Telnet, gameHandler, logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: telnetAcceptor.ListenAndServe,
		StopFn:  telnetAcceptor.Stop,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Strings("services", lifecycle.Names()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadScripts creates the script manager, loads each zone's scripts and the
// global fallback scripts, and exposes item definitions to Lua. Script load
// failures are logged; the affected zone runs with default hooks.
func loadScripts(cfg config.ContentConfig, items *inventory.Registry, zones []*world.Zone, logger *zap.Logger) *scripting.Manager {
	scripts := scripting.NewManager(observability.Component(logger, "scripting"))
	scripts.LookupItem = func(defID string) *scripting.ItemInfo {
		def, ok := items.Item(defID)
		if !ok {
			return nil
		}
		return &scripting.ItemInfo{ID: def.ID, Name: def.Name, Kind: def.Kind, Value: def.Value, Weight: def.Weight}
	}

	for _, z := range zones {
		if z.ScriptDir == "" {
			continue
		}
		dir := z.ScriptDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.ScriptDir, dir)
		}
		limit := z.ScriptInstructionLimit
		if limit == 0 {
			limit = cfg.ScriptInstructionLimit
		}
		if err := scripts.LoadZone(z.ID, dir, limit); err != nil {
			logger.Warn("loading zone scripts", zap.String("zone", z.ID), zap.String("dir", dir), zap.Error(err))
			continue
		}
		logger.Info("zone scripts loaded", zap.String("zone", z.ID), zap.String("dir", dir))
	}

	if err := scripts.LoadGlobal(cfg.ScriptDir, cfg.ScriptInstructionLimit); err != nil {
		logger.Warn("loading global scripts", zap.String("dir", cfg.ScriptDir), zap.Error(err))
	}
	return scripts
}
