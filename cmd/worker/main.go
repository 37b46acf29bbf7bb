// Command worker verifies donations left Pending by abandoned or interrupted
// checkouts, on a cron schedule.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	pgRepo "tlwd-backend/internal/infra/adapter/persistence/postgres"
	"tlwd-backend/internal/infra/db"
	"tlwd-backend/internal/infra/notifier"
	"tlwd-backend/internal/infra/payment"
	workerPkg "tlwd-backend/internal/infra/worker"
	"tlwd-backend/internal/observability/logging"
	donationUC "tlwd-backend/internal/usecase/donation"
	"tlwd-backend/pkg/config"
)

func main() {
	_ = godotenv.Load()
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := workerPkg.NewMetrics(prometheus.DefaultRegisterer)
	cfg := workerPkg.LoadConfigFromEnv(logger, metrics.Config)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("stale_after", cfg.StaleAfter),
		slog.Duration("max_age", cfg.MaxAge),
		slog.Int("batch_size", cfg.BatchSize),
		slog.Int("health_port", cfg.HealthPort))

	database, err := db.Open(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	secret := os.Getenv("PAYSTACK_SECRET_KEY")
	if secret == "" {
		logger.Error("PAYSTACK_SECRET_KEY must be set")
		os.Exit(1)
	}
	svc := &donationUC.Service{
		Repo: pgRepo.NewDonationRepo(database),
		Gateway: payment.NewPaystack(payment.PaystackConfig{
			SecretKey: secret,
			BaseURL:   os.Getenv("PAYSTACK_BASE_URL"),
			Timeout:   config.GetEnvDuration("PAYSTACK_TIMEOUT", 15*time.Second),
		}, logger),
		Mailer: newMailer(logger),
		Templates: notifier.Templates{
			FrontendURL: config.GetEnvString("FRONTEND_URL", "https://tlwdfoundation.org"),
			AdminEmail:  os.Getenv("ADMIN_EMAIL"),
		},
		Logger: logger,
	}

	health := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), promhttp.Handler(), logger)
	go func() {
		if err := health.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	j := &job{svc: svc, cfg: cfg, metrics: metrics, health: health, logger: logger}
	c := cron.New(cron.WithLocation(cfg.Location()), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.CronSchedule, func() { j.run(ctx) }); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	health.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	health.SetReady(false)
	// 実行中のスイープが終わるのを待つ
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

func newMailer(logger *slog.Logger) notifier.Mailer {
	key := os.Getenv("RESEND_API_KEY")
	if key == "" {
		logger.Warn("RESEND_API_KEY not set, receipts are logged instead of sent")
		return notifier.NewNoOpMailer(logger)
	}
	return notifier.NewResendMailer(notifier.ResendConfig{
		APIKey:            key,
		From:              config.GetEnvString("MAIL_FROM", "TLWD Foundation <noreply@tlwd.org>"),
		Timeout:           config.GetEnvDuration("MAIL_TIMEOUT", 10*time.Second),
		RequestsPerSecond: config.GetEnvFloat("MAIL_RATE_PER_SECOND", 2),
		Burst:             config.GetEnvInt("MAIL_BURST", 5),
	}, logger)
}
