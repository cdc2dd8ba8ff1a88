package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// DailySummaryHour and DailySummaryMinute set when the nightly catalog
	// summary runs (24h clock)
	DailySummaryHour   int
	DailySummaryMinute int

	// SweepInterval is how often the token blacklist sweep runs
	SweepInterval time.Duration

	// CheckInterval is how often the trigger wakes up
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		DailySummaryHour:   2, // 2am
		DailySummaryMinute: 0,
		SweepInterval:      time.Hour,
		CheckInterval:      time.Minute,
	}
}

// ParseDailySchedule extracts hour and minute from a five-field cron
// expression of the form "M H * * *". Only daily schedules are supported;
// anything else is rejected.
func ParseDailySchedule(expr string) (hour, minute int, err error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return 0, 0, fmt.Errorf("invalid cron expression %q: expected 5 fields", expr)
	}
	if fields[2] != "*" || fields[3] != "*" || fields[4] != "*" {
		return 0, 0, fmt.Errorf("unsupported cron expression %q: only daily schedules are supported", expr)
	}
	minute, err = strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute field %q in cron expression", fields[0])
	}
	hour, err = strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour field %q in cron expression", fields[1])
	}
	return hour, minute, nil
}

// CronTrigger submits recurring jobs to the scheduler
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // Which date the daily summary last ran for
	lastSweepAt time.Time
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *CronTrigger {
	return &CronTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("summary_hour", c.config.DailySummaryHour),
		zap.Int("summary_minute", c.config.DailySummaryMinute),
		zap.Duration("sweep_interval", c.config.SweepInterval),
		zap.Duration("check_interval", c.config.CheckInterval),
	)

	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkDailySummary()
			c.checkBlacklistSweep()
		}
	}
}

func (c *CronTrigger) checkDailySummary() {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	c.mu.Lock()
	alreadyRan := c.lastRunDate == currentDate
	c.mu.Unlock()
	if alreadyRan {
		return
	}

	if now.Hour() != c.config.DailySummaryHour || now.Minute() != c.config.DailySummaryMinute {
		return
	}

	c.mu.Lock()
	c.lastRunDate = currentDate
	c.mu.Unlock()

	c.logger.Info("Triggering daily catalog summary")
	if err := c.scheduler.ScheduleDailySummary(); err != nil {
		c.logger.Error("Failed to schedule catalog summary", zap.Error(err))
	}
}

func (c *CronTrigger) checkBlacklistSweep() {
	now := time.Now()

	c.mu.Lock()
	due := now.Sub(c.lastSweepAt) >= c.config.SweepInterval
	if due {
		c.lastSweepAt = now
	}
	c.mu.Unlock()
	if !due {
		return
	}

	if err := c.scheduler.ScheduleBlacklistSweep(); err != nil {
		c.logger.Error("Failed to schedule blacklist sweep", zap.Error(err))
	}
}

// TriggerSummaryNow submits a catalog summary job outside the schedule
func (c *CronTrigger) TriggerSummaryNow() error {
	return c.scheduler.ScheduleDailySummary()
}
