package main

import (
	"context"
	"log/slog"
	"time"

	"tlwd-backend/internal/handler/http/respond"
	workerPkg "tlwd-backend/internal/infra/worker"
	donationUC "tlwd-backend/internal/usecase/donation"
)

// reconciler is the part of the donation service the sweep needs.
type reconciler interface {
	ReconcileStale(ctx context.Context, staleAfter, maxAge time.Duration, limit int) (*donationUC.SweepResult, error)
}

type job struct {
	svc     reconciler
	cfg     workerPkg.Config
	metrics *workerPkg.Metrics
	health  *workerPkg.HealthServer
	logger  *slog.Logger
}

// run performs one sweep bounded by the configured timeout.
func (j *job) run(parent context.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, j.cfg.JobTimeout)
	defer cancel()

	j.logger.Info("reconciliation started")
	res, err := j.svc.ReconcileStale(ctx, j.cfg.StaleAfter, j.cfg.MaxAge, j.cfg.BatchSize)
	elapsed := time.Since(start)
	j.metrics.RecordRun(err, elapsed)

	status := workerPkg.RunStatus{StartedAt: start, DurationMS: elapsed.Milliseconds()}
	if res != nil {
		status.Checked = res.Checked
	}
	if err != nil {
		status.Error = respond.SanitizeError(err)
		j.logger.Error("reconciliation failed",
			slog.String("error", status.Error),
			slog.Int("checked", status.Checked),
			slog.Duration("duration", elapsed))
	} else {
		j.logger.Info("reconciliation completed",
			slog.Int("checked", res.Checked),
			slog.Int("successful", res.Successful),
			slog.Int("failed", res.Failed),
			slog.Int("pending", res.Pending),
			slog.Int("errors", res.Errors),
			slog.Duration("duration", elapsed))
	}
	if j.health != nil {
		j.health.RecordRun(status)
	}
}
