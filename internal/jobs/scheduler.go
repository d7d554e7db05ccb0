package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"primex/api/internal/monitor"
	"primex/api/internal/service"
)

// Scheduler drives the periodic maintenance work: the rate-limit sweep
// and the nightly security-event archival. It runs independently of
// request traffic.
type Scheduler struct {
	cron      *cron.Cron
	monitor   *monitor.Monitor
	retention *service.RetentionService
	interval  time.Duration
	log       zerolog.Logger
}

func NewScheduler(m *monitor.Monitor, retention *service.RetentionService, sweepInterval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		monitor:   m,
		retention: retention,
		interval:  sweepInterval,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), s.monitor.SweepRateLimits); err != nil {
		return err
	}

	if s.retention != nil {
		if _, err := s.cron.AddFunc("0 0 3 * * *", s.runArchival); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish, up to a short grace period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) runArchival() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	count, err := s.retention.ArchiveExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("security event archival failed")
		return
	}
	if count > 0 {
		s.log.Info().Int("archived", count).Msg("security event archival complete")
	}
}
