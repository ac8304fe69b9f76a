package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const leaseSweepJobName = "lease-sweep"

var ErrUnknownJob = errors.New("unknown job")

// JobScheduler runs the periodic lifecycle jobs in-process.
type JobScheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
	logger    *zap.Logger
}

// JobInfo describes a registered job.
type JobInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run,omitempty"`
	LastRun time.Time `json:"last_run,omitempty"`
}

// schedulerLogger adapts zap to the gocron logger interface.
type schedulerLogger struct {
	s *zap.SugaredLogger
}

func (l schedulerLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l schedulerLogger) Info(msg string, args ...any) { l.s.Infow(msg, args...) }
func (l schedulerLogger) Warn(msg string, args ...any) { l.s.Warnw(msg, args...) }
func (l schedulerLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }

// NewJobScheduler registers the daily lease sweep at hour:minute server local time.
func NewJobScheduler(sweep func(context.Context), hour, minute uint, logger *zap.Logger) (*JobScheduler, error) {
	if hour > 23 || minute > 59 {
		return nil, fmt.Errorf("invalid sweep time %02d:%02d", hour, minute)
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.Local),
		gocron.WithLogger(schedulerLogger{s: logger.Sugar()}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		jobs:      make(map[string]gocron.Job),
		logger:    logger,
	}

	// Singleton mode: a slow run is never overlapped by the next trigger.
	sweepJob, err := scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(sweep, context.Background()),
		gocron.WithName(leaseSweepJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register %s: %w", leaseSweepJobName, err)
	}
	js.jobs[leaseSweepJobName] = sweepJob

	logger.Info("Registered background jobs",
		zap.Int("count", len(js.jobs)),
		zap.String("sweep_at", fmt.Sprintf("%02d:%02d", hour, minute)))
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// RunNow queues a registered job outside its schedule and returns without waiting for it.
// The scheduler must be started.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownJob, name)
	}
	return job.RunNow()
}

// Jobs reports every registered job with its next and last run.
func (js *JobScheduler) Jobs() []JobInfo {
	js.mu.RLock()
	defer js.mu.RUnlock()

	infos := make([]JobInfo, 0, len(js.jobs))
	for name, job := range js.jobs {
		info := JobInfo{Name: name}
		if next, err := job.NextRun(); err == nil {
			info.NextRun = next
		}
		if last, err := job.LastRun(); err == nil {
			info.LastRun = last
		}
		infos = append(infos, info)
	}
	return infos
}
