package digest

import (
	"context"

	"tendorai/internal/usecase"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner schedules the weekly digest batch. The service's per-week
// idempotency makes overlapping or repeated fires harmless.
type Runner struct {
	service *usecase.DigestService
	spec    string
	logger  *zap.Logger
	cron    *cron.Cron
}

func NewRunner(service *usecase.DigestService, spec string, logger *zap.Logger) *Runner {
	return &Runner{service: service, spec: spec, logger: logger}
}

// Start registers the schedule and begins firing. Returns an error only for
// an invalid cron spec.
func (r *Runner) Start(ctx context.Context) error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc(r.spec, func() {
		r.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("digest schedule started", zap.String("spec", r.spec))
	return nil
}

// Stop halts the schedule and waits for an in-flight batch to finish.
func (r *Runner) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.logger.Info("digest schedule stopped")
}

// RunOnce executes a single batch immediately.
func (r *Runner) RunOnce(ctx context.Context) {
	result, err := r.service.Run(ctx)
	if err != nil {
		r.logger.Error("digest run failed", zap.Error(err))
		return
	}
	r.logger.Info("digest run finished",
		zap.Int("eligible", result.Eligible),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
}
