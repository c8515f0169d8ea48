package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/estatebook/backend/internal/infrastructure/config"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/infrastructure/migration"
	"github.com/estatebook/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// schemaCommand runs against the database; args excludes the command name
type schemaCommand struct {
	usage string
	run   func(m *migration.Migrator, log *zap.Logger, args []string) error
}

var schemaCommands = map[string]schemaCommand{
	"up": {"up", func(m *migration.Migrator, _ *zap.Logger, _ []string) error {
		return m.Up()
	}},
	"down": {"down", func(m *migration.Migrator, _ *zap.Logger, _ []string) error {
		return m.Down()
	}},
	"step": {"step <n>", func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	}},
	"goto": {"goto <version>", func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(v))
	}},
	"force": {"force <version>", func(m *migration.Migrator, log *zap.Logger, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		log.Warn("Forcing schema version; the dirty flag is cleared without running SQL", zap.Int("version", v))
		return m.Force(v)
	}},
	"version": {"version", func(m *migration.Migrator, log *zap.Logger, _ []string) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	}},
}

func main() {
	migrationsPath := flag.String("path", "", "Migrations directory (default: the schema embedded in the binary)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	switch args[0] {
	case "create", "list":
		dir := *migrationsPath
		if dir == "" {
			dir = cfg.Database.MigrationsPath
		}
		if dir, err = filepath.Abs(dir); err != nil {
			log.Fatal("Failed to resolve migrations directory", zap.Error(err))
		}
		if err := runFileCommand(log, args, dir); err != nil {
			log.Fatal("Command failed", zap.String("command", args[0]), zap.Error(err))
		}
		return
	}

	cmd, ok := schemaCommands[args[0]]
	if !ok {
		log.Error("Unknown command", zap.String("command", args[0]))
		printUsage()
		os.Exit(1)
	}
	if wantsArg := cmd.usage != args[0]; wantsArg && len(args) < 2 {
		log.Fatal("Missing argument", zap.String("usage", "migrate "+cmd.usage))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to reach database", zap.String("host", cfg.Database.Host), zap.Error(err))
	}

	source, fsys := "embedded", fs.FS(migrations.FS)
	if *migrationsPath != "" {
		source, fsys = *migrationsPath, os.DirFS(*migrationsPath)
	}
	m, err := migration.New(db, fsys, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	// Close also closes db
	defer m.Close()

	log.Info("Running schema command", zap.String("command", args[0]), zap.String("source", source))
	if err := cmd.run(m, log, args[1:]); err != nil {
		log.Fatal("Schema command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func runFileCommand(log *zap.Logger, args []string, dir string) error {
	if args[0] == "list" {
		names, err := migration.ListMigrations(dir)
		if err != nil {
			return err
		}
		log.Info("Available migrations", zap.String("path", dir), zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("usage: migrate create <name> [description]")
	}
	description := ""
	if len(args) > 2 {
		description = args[2]
	}
	mf, err := migration.CreateMigration(dir, args[1], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Estatebook schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the current schema version
  force <version>       Set the version without running SQL (repairs a dirty schema)
  create <name> [desc]  Write a new up/down file pair
  list                  List migration files

Flags:
  -path string          Migrations directory (default: embedded schema; create/list use database.migrations_path)
  -log-level string     debug, info, warn or error (default: info)

Database settings come from config.toml or BROKERAGE_DATABASE_HOST, BROKERAGE_DATABASE_PORT,
BROKERAGE_DATABASE_USER, BROKERAGE_DATABASE_PASSWORD, BROKERAGE_DATABASE_DBNAME, BROKERAGE_DATABASE_SSLMODE.

Examples:
  migrate up
  migrate step -1
  migrate create add_payment_index "Index payment records by status"`)
}
