// Package main applies the loot list database schema.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cory-johannsen/lootlist/internal/config"
	"github.com/cory-johannsen/lootlist/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/lootlist.yaml", "path to configuration file")
	dir := flag.String("migrations", "migrations", "path to migration files")
	direction := flag.String("direction", string(postgres.Up), "up or down")
	steps := flag.Int("steps", 0, "migrations to apply, 0 for all")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if !cfg.Database.Enabled {
		log.Fatalf("database is disabled in %s; set database.enabled or LOOTLIST_DATABASE_ENABLED", *configPath)
	}

	res, err := postgres.Migrate(cfg.Database.DSN(), *dir, postgres.Direction(*direction), *steps)
	if err != nil {
		log.Fatal(err)
	}
	verb := "migrated " + *direction
	if !res.Changed {
		verb = "no changes"
	}
	fmt.Printf("%s: version=%d dirty=%v [%s]\n", verb, res.Version, res.Dirty, time.Since(start))
}
