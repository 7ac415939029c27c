package application

import (
	"context"
	"fmt"
	"time"

	"elobot/internal/metrics"
	"elobot/internal/repository"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// SweepReport summarizes one pass of the stale-match sweep.
type SweepReport struct {
	Found    int
	Resolved int
	Skipped  int
	Failed   int
}

// Sweeper periodically reconciles pending matches whose report window has
// passed. It satisfies services.Service.
type Sweeper struct {
	repo    repository.Store
	matches MatchService
	venue   string
	window  time.Duration
	every   time.Duration
	clock   clockwork.Clock
	metrics *metrics.Metrics
	logger  Logger

	sched gocron.Scheduler
}

func NewSweeper(repo repository.Store, matches MatchService, venue string, timing Timing, clock clockwork.Clock, m *metrics.Metrics, logger Logger) *Sweeper {
	timing = timing.withDefaults()
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sweeper{
		repo:    repo,
		matches: matches,
		venue:   venue,
		window:  timing.ReportWindow,
		every:   timing.SweepInterval,
		clock:   clock,
		metrics: m,
		logger:  logger,
	}
}

func (s *Sweeper) Init() error {
	sched, err := gocron.NewScheduler(
		gocron.WithClock(s.clock),
		gocron.WithLogger(schedulerLogger{s.logger}),
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.sched = sched
	return nil
}

func (s *Sweeper) Run(ctx context.Context) {
	_, err := s.sched.NewJob(
		gocron.DurationJob(s.every),
		gocron.NewTask(func() {
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("Sweep failed: %v", err)
			}
		}),
		gocron.WithName("stale-match-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.logger.Error("Failed to schedule sweep: %v", err)
		return
	}
	s.sched.Start()
	s.logger.Info("Stale match sweep scheduled every %s", s.every)
}

func (s *Sweeper) Stop() {
	if s.sched == nil {
		return
	}
	if err := s.sched.Shutdown(); err != nil {
		s.logger.Error("Failed to stop scheduler: %v", err)
	}
}

// Sweep reconciles every pending match older than the report window. A
// failing match is logged and counted, the rest of the batch still runs.
func (s *Sweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	started := s.clock.Now()

	stale, err := s.repo.ListStaleMatches(ctx, started.Add(-s.window))
	if err != nil {
		return report, fmt.Errorf("failed to list stale matches: %w", err)
	}
	report.Found = len(stale)

	for _, m := range stale {
		if s.venue != "" && m.Announcement.ChannelID != s.venue {
			report.Skipped++
			continue
		}
		res, err := s.matches.Reconcile(ctx, m.ID, TriggerSweep)
		if err != nil {
			report.Failed++
			s.logger.Error("Failed to reconcile stale match %s: %v", m.ID, err)
			continue
		}
		if res.Applied {
			report.Resolved++
		}
	}

	s.metrics.ObserveSweep(s.clock.Since(started), report.Failed)
	if report.Found > 0 {
		s.logger.Info("Sweep: found %d, resolved %d, skipped %d, failed %d",
			report.Found, report.Resolved, report.Skipped, report.Failed)
	}
	return report, nil
}

// schedulerLogger adapts Logger to gocron's key/value logger.
type schedulerLogger struct {
	Logger
}

func (l schedulerLogger) Debug(msg string, args ...any) { l.Logger.Debug("gocron: %s %v", msg, args) }
func (l schedulerLogger) Info(msg string, args ...any)  { l.Logger.Info("gocron: %s %v", msg, args) }
func (l schedulerLogger) Warn(msg string, args ...any)  { l.Logger.Warn("gocron: %s %v", msg, args) }
func (l schedulerLogger) Error(msg string, args ...any) { l.Logger.Error("gocron: %s %v", msg, args) }
