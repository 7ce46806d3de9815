package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/config"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/database"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/dates"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/logging"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/repositories"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/retry"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	var (
		weekFlag   = flag.String("week", "", "week start date (Monday, e.g. 2026-09-07); defaults to the current week")
		targetFlag = flag.Int("target", -1, "weekly assignment target; defaults to the configured value")
		forceFlag  = flag.Bool("force", false, "regenerate even when the week holds completed entries")
		daemonFlag = flag.Bool("daemon", false, "run continuously, generating each week on the configured cron spec")
	)
	flag.Parse()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Int("weekly_target", cfg.Scheduler.WeeklyTarget),
		zap.Strings("technicians", cfg.Scheduler.Technicians))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *database.DB
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		var connErr error
		db, connErr = database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
		return connErr
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}
	_ = migrationDB.Close()

	evaluator := services.NewEligibilityEvaluator()
	generator := services.NewAssignmentGenerator(evaluator, cfg.Scheduler.TierFor, logger)
	scheduler := services.NewSchedulerService(
		services.NewDatabaseRunStore(db),
		repositories.NewEquipmentRepository(),
		repositories.NewHistoryRepository(),
		repositories.NewScheduleRepository(),
		generator,
		cfg.Scheduler.Technicians,
		cfg.Scheduler.CompletionWindowDays,
		logger,
	)

	target := cfg.Scheduler.WeeklyTarget
	if *targetFlag >= 0 {
		target = *targetFlag
	}

	if *daemonFlag {
		runDaemon(ctx, scheduler, cfg.Scheduler.CronSpec, target, logger)
		return
	}

	weekStart := currentWeekMonday(time.Now())
	if *weekFlag != "" {
		parsed, ok := dates.Parse(*weekFlag)
		if !ok {
			logger.Fatal("Unparseable -week value", zap.String("week", *weekFlag))
		}
		weekStart = parsed
	}

	result, err := scheduler.GenerateWeeklySchedule(ctx, weekStart, target, services.GenerateOptions{
		ForceRegenerateCompleted: *forceFlag,
		Progress:                 logProgress{logger: logger},
	})
	if err != nil {
		logger.Error("Schedule generation failed", zap.String("error", logging.SanitizeError(err)))
		os.Exit(1)
	}

	logger.Info("Schedule generation finished",
		zap.Int("total_assignments", result.TotalAssignments),
		zap.Int("unique_assets", result.UniqueAssets))
}

// runDaemon generates the current week's schedule on the configured cron
// spec until the context is cancelled.
func runDaemon(ctx context.Context, scheduler services.SchedulerService, spec string, target int, logger *zap.Logger) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		weekStart := currentWeekMonday(time.Now())
		result, err := scheduler.GenerateWeeklySchedule(ctx, weekStart, target, services.GenerateOptions{})
		if err != nil {
			logger.Error("Scheduled generation failed",
				zap.Time("week_start", weekStart),
				zap.String("error", logging.SanitizeError(err)))
			return
		}
		logger.Info("Scheduled generation finished",
			zap.Time("week_start", weekStart),
			zap.Int("total_assignments", result.TotalAssignments))
	})
	if err != nil {
		logger.Fatal("Invalid cron spec", zap.String("spec", spec), zap.Error(err))
	}

	logger.Info("Starting scheduler daemon", zap.String("cron", spec))
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("Scheduler daemon stopped")
}

// currentWeekMonday returns the Monday of the week containing t.
func currentWeekMonday(t time.Time) time.Time {
	t = dates.Midnight(t)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}

// logProgress bridges ProgressSink onto the zap logger for CLI runs.
type logProgress struct {
	logger *zap.Logger
}

func (p logProgress) Progress(stage string, completed, total int) {
	if total > 0 && completed%25 != 0 && completed != total {
		return
	}
	p.logger.Debug("Progress",
		zap.String("stage", stage),
		zap.Int("completed", completed),
		zap.Int("total", total))
}
