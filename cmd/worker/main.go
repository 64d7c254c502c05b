package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/config"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/roster"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/email"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/telegram"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-policy-engine/internal/repository/postgresql"
	auditService "github.com/cmlabs-hris/hris-policy-engine/internal/service/audit"
	notificationService "github.com/cmlabs-hris/hris-policy-engine/internal/service/notification"
	policyService "github.com/cmlabs-hris/hris-policy-engine/internal/service/policy"
	"github.com/cmlabs-hris/hris-policy-engine/internal/service/settings"
	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.App)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			slog.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()

	settingRepo := postgresql.NewSettingRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	txManager := postgresql.NewTxManager(db)

	settingsStore := settings.NewStore(settingRepo)
	policyEngine := policyService.NewEngine(settingsStore, salaryRepo, requestRepo, loc)
	auditSink := auditService.NewSink(auditRepo)
	retentionSvc := auditService.NewRetentionService(auditRepo, nil)

	snap := settingsStore.Snapshot(ctx)
	slog.Info("Policy settings loaded",
		"late_thresholds", []int{snap.Late.Threshold1, snap.Late.Threshold2, snap.Late.Threshold3},
		"late_penalty", snap.Late.Penalty.Type,
		"max_pending_days", snap.Reconcile.MaxPendingDays,
		"audit_retention_days", snap.Retention.RetentionDays,
		"holiday_multiplier_today", policyEngine.HolidayMultiplier(ctx, time.Now().In(loc)).String(),
	)

	if status, err := retentionSvc.Status(ctx); err != nil {
		slog.Warn("Failed to read audit retention status", "error", err)
	} else {
		slog.Info("Audit retention status",
			"total_records", status.TotalRecords,
			"last_2_months", status.Last2Months,
			"last_6_months", status.Last6Months,
			"oldest", status.Oldest,
			"newest", status.Newest,
		)
	}

	notificationSvc := notificationService.NewNotificationService(buildChannels(cfg), notificationService.Config{})
	defer notificationSvc.Stop()

	scheduler := cron.NewScheduler()

	if cfg.Scheduler.ReconcileEnabled {
		reconciliationJobs := cron.NewReconciliationJobs(requestRepo, attendanceRepo, settingsStore, auditSink, txManager, nil)
		reconciliationJobs.RegisterJobs(scheduler, cfg.Scheduler.ReconcileInterval)
	}

	if cfg.Scheduler.RetentionEnabled {
		auditJobs := cron.NewAuditJobs(retentionSvc, settingsStore, loc, cfg.Scheduler.RetentionRunHour, nil)
		auditJobs.RegisterJobs(scheduler, cfg.Scheduler.RetentionCheckInterval)
	}

	if cfg.Scheduler.AttendanceEnabled {
		r, err := roster.Load(cfg.Roster.Path)
		if err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				slog.Error("Invalid roster", "path", cfg.Roster.Path, "fields", verrs.ToMap())
			} else {
				slog.Error("Failed to load roster", "path", cfg.Roster.Path, "error", err)
			}
			os.Exit(1)
		}

		seed := uint64(cfg.Roster.Seed)
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}

		attendanceJobs := cron.NewSimulatedAttendanceJobs(
			r,
			attendanceRepo,
			notificationSvc,
			settingsStore,
			loc,
			nil,
			rand.New(rand.NewPCG(seed, seed>>1)),
		)
		attendanceJobs.RegisterJobs(scheduler, cfg.Scheduler.AttendancePollInterval)
		slog.Info("Simulated attendance enabled", "members", len(r.Members), "timezone", loc.String())
	}

	scheduler.Start(ctx)
	slog.Info("Worker running", "env", cfg.App.Env, "timezone", loc.String())

	<-ctx.Done()
	slog.Info("Shutdown signal received")
	scheduler.Stop()
}

func setupLogger(app config.AppConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(app.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if app.Env == "development" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}

// buildChannels returns every delivery channel with credentials configured
func buildChannels(cfg *config.Config) []notification.Channel {
	var channels []notification.Channel

	if emailChannel, err := email.NewChannel(cfg.SMTP); err == nil {
		channels = append(channels, emailChannel)
	} else {
		slog.Info("Email channel disabled", "reason", err)
	}

	if telegramChannel, err := telegram.NewChannel(cfg.Telegram); err == nil {
		channels = append(channels, telegramChannel)
	} else {
		slog.Info("Telegram channel disabled", "reason", err)
	}

	return channels
}
