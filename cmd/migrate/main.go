package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/firecash/backend/internal/infrastructure/config"
	"github.com/firecash/backend/internal/infrastructure/logger"
)

func main() {
	var (
		configPath     string
		migrationsPath string
	)
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&migrationsPath, "path", "migrations", "Path to migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New("info", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.MigrateURL())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		log.Fatal("failed to create migration driver", zap.Error(err))
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, cfg.Database.Name, driver)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "goto":
		if len(args) < 2 {
			log.Fatal("goto requires a version")
		}
		version, parseErr := strconv.ParseUint(args[1], 10, 64)
		if parseErr != nil {
			log.Fatal("invalid version", zap.Error(parseErr))
		}
		err = m.Migrate(uint(version))
	case "version":
		version, dirty, vErr := m.Version()
		if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
			log.Fatal("failed to read version", zap.Error(vErr))
		}
		log.Info("migration status", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("migrations applied", zap.String("command", args[0]))
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command>

Commands:
  up       Apply all pending migrations
  down     Roll back the most recent migration
  goto N   Migrate to version N
  version  Print the current migration version

Flags:
  -config  Path to config file
  -path    Path to migrations directory (default: migrations)`)
}
