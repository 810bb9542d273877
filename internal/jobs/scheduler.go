package jobs

import (
	"context"
	"time"

	"movietix/internal/usecase"
	"movietix/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the background maintenance of the booking core: expiring
// unpaid bookings past the grace window and clearing dead seat holds. Both
// sweeps are idempotent, so overlapping or repeated runs are harmless.
type Scheduler struct {
	cron    *cron.Cron
	service *usecase.Service
	config  *utils.Config
	log     *zap.Logger
}

func NewScheduler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		config:  config,
		log:     log.With(zap.String("component", "scheduler")),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.config.Booking.ExpirySweepSpec, s.runExpirySweep); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.config.Booking.HoldPurgeSpec, s.runHoldPurge); err != nil {
		return err
	}

	s.cron.Start()

	s.log.Info("Scheduler started",
		zap.String("expiry_sweep", s.config.Booking.ExpirySweepSpec),
		zap.String("hold_purge", s.config.Booking.HoldPurgeSpec),
	)

	return nil
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) runExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	expired, err := s.service.Booking.ProcessBookingExpiry(ctx)
	if err != nil {
		s.log.Error("Booking expiry sweep failed", zap.Error(err))
		return
	}

	if expired > 0 {
		s.log.Info("Booking expiry sweep finished", zap.Int("expired", expired))
	}
}

func (s *Scheduler) runHoldPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.service.Showtime.PurgeExpiredHolds(ctx); err != nil {
		s.log.Error("Hold purge failed", zap.Error(err))
	}
}
