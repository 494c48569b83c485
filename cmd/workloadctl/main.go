// Command workloadctl performs operator tasks against the workload database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/repository"
	"github.com/noah-isme/workload-api/internal/service"
	"github.com/noah-isme/workload-api/migrations"
	"github.com/noah-isme/workload-api/pkg/config"
	"github.com/noah-isme/workload-api/pkg/database"
	"github.com/noah-isme/workload-api/pkg/logger"
	"github.com/noah-isme/workload-api/pkg/storage"
)

const usage = `usage: workloadctl <command> [flags]

commands:
  migrate [up|down|status|redo|version]   apply the embedded schema
  seed -file fixtures.yaml                load staff, programs and subjects
  create-year -year 2568                  create the three terms of an academic year
  cleanup-exports -older-than 72h         delete expired local export files
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "migrate":
		err = runMigrate(ctx, cfg, args)
	case "seed":
		err = runSeed(ctx, cfg, logr, args)
	case "create-year":
		err = runCreateYear(ctx, cfg, logr, args)
	case "cleanup-exports":
		err = runCleanup(cfg, logr, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logr.Fatal("command failed", zap.String("command", cmd), zap.Error(err))
	}
}

func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func runMigrate(ctx context.Context, cfg *config.Config, args []string) error {
	command := "up"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(ctx, db, migrations.FS, command, args...)
}

func runSeed(ctx context.Context, cfg *config.Config, logr *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	path := fs.String("file", "seed.yaml", "YAML fixture file")
	_ = fs.Parse(args)

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()
	file, err := parseSeed(f)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	// No cache is attached: seeding runs before the API serves boards.
	s := &seeder{
		staff:    service.NewStaffService(users, nil, nil, logr),
		users:    users,
		programs: service.NewProgramService(repository.NewProgramRepository(db), users, nil, users, nil, logr),
		subjects: service.NewSubjectService(repository.NewSubjectRepository(db), nil, users, nil, logr),
		logger:   logr,
	}
	_, err = s.apply(ctx, file)
	return err
}

func runCreateYear(ctx context.Context, cfg *config.Config, logr *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("create-year", flag.ExitOnError)
	year := fs.Int("year", 0, "Buddhist-era academic year, e.g. 2568")
	_ = fs.Parse(args)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	terms := service.NewTermService(repository.NewTermRepository(db), repository.NewOfferingRepository(db), nil, users, nil, logr)
	created, err := terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: *year}, nil)
	if err != nil {
		return err
	}
	for _, term := range created {
		logr.Info("term created", zap.String("id", term.ID), zap.Int("year", term.AcademicYear), zap.Int("semester", term.Semester))
	}
	return nil
}

func runCleanup(cfg *config.Config, logr *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("cleanup-exports", flag.ExitOnError)
	olderThan := fs.Duration("older-than", cfg.Reports.ExportRetention, "remove exports older than this")
	_ = fs.Parse(args)

	if cfg.Storage.Driver != config.StorageDriverLocal {
		return fmt.Errorf("cleanup-exports only applies to the %q storage driver", config.StorageDriverLocal)
	}
	if *olderThan <= 0 {
		*olderThan = 24 * time.Hour
	}
	local, err := storage.NewLocalStorage(cfg.Storage.LocalDir)
	if err != nil {
		return err
	}
	removed, err := local.CleanupOlderThan(*olderThan)
	if err != nil {
		return err
	}
	logr.Info("exports removed", zap.Int("count", len(removed)), zap.Duration("older_than", *olderThan))
	return nil
}
