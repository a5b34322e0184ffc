package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reminders-backend/internal/reminder/domain"
	"reminders-backend/internal/reminder/usecase"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled reminder: which reminder to send and when.
type Job struct {
	Request  domain.Request
	Schedule string // 5-field cron expression
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule parses entries of the form "kind[:slot]@cron", separated by
// semicolons, e.g. "consumo@0 21 * * *;mood:morning@0 9 * * *".
func ParseSchedule(spec string) ([]Job, error) {
	var jobs []Job
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		target, expr, ok := strings.Cut(entry, "@")
		if !ok {
			return nil, fmt.Errorf("schedule entry %q: missing '@'", entry)
		}
		kind, slot, _ := strings.Cut(strings.TrimSpace(target), ":")
		req, err := domain.ParseRequest(kind, slot)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %q: %w", entry, err)
		}
		expr = strings.TrimSpace(expr)
		if _, err := cronParser.Parse(expr); err != nil {
			return nil, fmt.Errorf("schedule entry %q: %w", entry, err)
		}
		jobs = append(jobs, Job{Request: req, Schedule: expr})
	}
	return jobs, nil
}

// ReminderScheduler runs reminder dispatches on cron schedules
type ReminderScheduler struct {
	reminderUsecase usecase.ReminderUsecase
	jobs            []Job
	cron            *cron.Cron
	log             *zap.Logger
}

// NewReminderScheduler creates a new scheduler evaluating schedules in loc
func NewReminderScheduler(
	reminderUsecase usecase.ReminderUsecase,
	jobs []Job,
	loc *time.Location,
	log *zap.Logger,
) *ReminderScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderScheduler{
		reminderUsecase: reminderUsecase,
		jobs:            jobs,
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log: log,
	}
}

// Start registers every job and begins the scheduler loop
func (s *ReminderScheduler) Start() error {
	if len(s.jobs) == 0 {
		s.log.Info("no reminder schedule configured, scheduler disabled")
		return nil
	}

	for _, job := range s.jobs {
		if _, err := s.cron.AddFunc(job.Schedule, func() { s.runJob(job) }); err != nil {
			return fmt.Errorf("register %s: %w", job.Request, err)
		}
		s.log.Info("reminder scheduled",
			zap.String("request", job.Request.String()),
			zap.String("schedule", job.Schedule),
		)
	}
	s.cron.Start()
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *ReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("reminder scheduler stopped")
}

func (s *ReminderScheduler) runJob(job Job) {
	// No deadline: a run attempts every candidate before reporting.
	summary, err := s.reminderUsecase.Run(context.Background(), job.Request)
	if err != nil {
		s.log.Error("scheduled reminder failed", zap.String("request", job.Request.String()), zap.Error(err))
		return
	}
	s.log.Info("scheduled reminder finished",
		zap.String("request", job.Request.String()),
		zap.String("run_id", summary.RunID),
		zap.Int("sent", summary.Sent),
	)
}
