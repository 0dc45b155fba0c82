// Package jobs holds the scheduled maintenance work of the bookings service.
package jobs

import (
	"context"

	"medibook/internal/bookings/service"
	"medibook/pkg/config"

	"github.com/robfig/cron/v3"
)

// ExpiryJob cancels pending bookings that were never confirmed within the
// configured retention window.
type ExpiryJob struct {
	svc  service.BookingService
	cfg  *config.Config
	cron *cron.Cron
}

func NewExpiryJob(svc service.BookingService, cfg *config.Config) *ExpiryJob {
	return &ExpiryJob{
		svc:  svc,
		cfg:  cfg,
		cron: cron.New(),
	}
}

// Start registers the cron entry and begins the scheduler. Returns an error
// only when the configured cron expression does not parse.
func (j *ExpiryJob) Start() error {
	_, err := j.cron.AddFunc(j.cfg.PendingExpiryCron, j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.cfg.Log.Info("Pending-expiry job scheduled",
		"cron", j.cfg.PendingExpiryCron,
		"expiry_age", j.cfg.PendingExpiryAge,
	)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (j *ExpiryJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *ExpiryJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.RequestTimeout)
	defer cancel()

	expired, err := j.svc.ExpirePending(ctx, j.cfg.PendingExpiryAge)
	if err != nil {
		j.cfg.Log.Error("Pending-expiry sweep failed", "error", err)
		return
	}

	j.cfg.Log.Info("Pending-expiry sweep finished", "expired", expired)
}
