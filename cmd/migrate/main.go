// Command migrate applies the database schema with goose.
//
// Migrations are read from the set embedded in the binary unless -dir (or
// MIGRATIONS_DIR) points at a directory on disk. New migrations are always
// created on disk.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/gestorpro/gestor-api/internal/logger"
	"github.com/gestorpro/gestor-api/migrations"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const usage = `usage: migrate [flags] <command> [args]

commands:
  up | up-by-one | up-to VERSION
  down | down-to VERSION | redo | reset
  status | version
  create NAME

flags:`

func main() {
	dir := flag.String("dir", os.Getenv("MIGRATIONS_DIR"), "migrations directory on disk; empty uses the embedded set")
	timeout := flag.Duration("timeout", 10*time.Minute, "abort when migrating takes longer than this")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*dir, *timeout, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

func run(dir string, timeout time.Duration, command string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if command == "create" {
		return create(dir, args, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	source := dir
	if source == "" {
		goose.SetBaseFS(migrations.FS)
		source = "."
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database %s:%d: %w", cfg.Database.Host, cfg.Database.Port, err)
	}

	started := time.Now()
	log.Info("running migrations",
		zap.String("command", command),
		zap.Strings("args", args),
		zap.Bool("embedded", dir == ""))

	if err := goose.RunContext(ctx, command, db, source, args...); err != nil {
		return err
	}

	log.Info("migrations finished",
		zap.String("command", command),
		zap.Duration("duration", time.Since(started)))
	return nil
}

// create writes a new timestamped SQL migration next to the existing ones
func create(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("create needs a migration name")
	}
	if dir == "" {
		dir = "migrations"
	}
	if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
		return err
	}
	log.Info("migration created", zap.String("dir", dir), zap.String("name", args[0]))
	return nil
}
