package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wires the sweeps onto a cron schedule. Both run shortly
// after midnight UTC, completion first so a request cannot be expired
// and completed in the same night.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	logger  *zap.SugaredLogger
}

func NewScheduler(sweeper *Sweeper, logger *zap.SugaredLogger) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		sweeper: sweeper,
		logger:  logger,
	}
	s.register()
	return s
}

func (s *Scheduler) register() {
	if _, err := s.cron.AddFunc("5 0 * * *", s.sweeper.CompletePastSlots); err != nil {
		s.logger.Errorw("failed to register complete-past-slots", "error", err)
	}
	if _, err := s.cron.AddFunc("15 0 * * *", s.sweeper.ExpirePendingSlots); err != nil {
		s.logger.Errorw("failed to register expire-pending-slots", "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for any running job before returning.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
