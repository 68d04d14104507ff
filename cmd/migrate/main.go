// Package main applies and inspects PostgreSQL schema migrations
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/mealplan/pkg/logger"
)

const usage = `usage: migrate [-config path] <command>

commands:
  up           apply all pending migrations
  down         roll back every migration
  reset        roll back and re-apply every migration
  status       print the current and pending versions
  force <ver>  set the version without running migrations
`

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatalf("Migrations target PostgreSQL; database.driver is %q", cfg.Database.Driver)
	}

	zl, err := logger.New(logger.Config{Name: "migrate", Level: cfg.App.LogLevel, Format: "console"})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := sql.Open("pgx", cfg.Database.MigrationURL())
	if err != nil {
		zl.Fatal("Failed to open database", zap.Error(err))
	}

	migrator, err := migrations.New(db, cfg.Database.Database, zl)
	if err != nil {
		zl.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	if err := execute(migrator, flag.Args()); err != nil {
		zl.Error("Migration command failed", zap.Error(err))
		os.Exit(1)
	}
}

func execute(m *migrations.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "reset":
		return m.Reset()
	case "status":
		status, err := m.Status()
		if err != nil {
			return err
		}
		fmt.Printf("version: %d dirty: %t pending: %v\n", status.Version, status.Dirty, status.Pending)
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force needs a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(v)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
