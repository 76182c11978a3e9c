package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/tazhate/complybot/config"
	"github.com/tazhate/complybot/internal/notify"
)

// Scheduler drives the notification sweep on two cadences: a fixed
// daily run at the configured local time and a 12-hour catch-up run.
// The two entries can both fire on the same calendar day; the sweep is
// stateless, so the overlap only repeats reminders, never corrupts
// anything.
type Scheduler struct {
	cron  *cron.Cron
	cfg   *config.Config
	sweep *notify.Sweep
}

func New(cfg *config.Config, sweep *notify.Sweep) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Timezone))

	return &Scheduler{
		cron:  c,
		cfg:   cfg,
		sweep: sweep,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	dailySpec, err := dailyCronSpec(s.cfg.SweepTime)
	if err != nil {
		return fmt.Errorf("sweep time: %w", err)
	}
	if _, err := s.cron.AddFunc(dailySpec, s.runSweep); err != nil {
		return fmt.Errorf("add daily sweep: %w", err)
	}

	// Catch-up pass so that a restart or a missed daily run still
	// produces the critical/overdue reminders the same day
	if _, err := s.cron.AddFunc("@every 12h", s.runSweep); err != nil {
		return fmt.Errorf("add catch-up sweep: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (TZ: %s, daily sweep: %s, catch-up: 12h)",
		s.cfg.Timezone, s.cfg.SweepTime)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runSweep() {
	s.sweep.Run()
}

// dailyCronSpec turns "HH:MM" into a five-field cron expression.
func dailyCronSpec(sweepTime string) (string, error) {
	parts := strings.Split(sweepTime, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format: %s", sweepTime)
	}
	return fmt.Sprintf("%s %s * * *", parts[1], parts[0]), nil
}
