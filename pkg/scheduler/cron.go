package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/grsix/outreach/pkg/metrics"
)

// SessionEvictor drops conversation sessions that have been idle too long.
type SessionEvictor interface {
	EvictIdle(idleFor time.Duration) int
	Count() int
}

// CronManager manages the scheduled jobs around the call pipeline.
type CronManager struct {
	cron      *cron.Cron
	scheduler *Scheduler
	sessions  SessionEvictor
	idleTTL   time.Duration
	metrics   *metrics.Metrics
	logger    *log.Logger
}

// NewCronManager creates a new cron manager. sessions may be nil when the
// dialogue engine is not running in this process.
func NewCronManager(scheduler *Scheduler, sessions SessionEvictor, idleTTL time.Duration, m *metrics.Metrics, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	// A sweep that outlives its minute is skipped, not stacked. Overlapping
	// sweeps would race on the same pending rows.
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.PrintfLogger(logger)),
	))

	return &CronManager{
		cron:      c,
		scheduler: scheduler,
		sessions:  sessions,
		idleTTL:   idleTTL,
		metrics:   m,
		logger:    logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Every minute: dispatch due campaign calls
	_, err := cm.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 55*time.Second)
		defer cancel()

		if err := cm.scheduler.RunSweep(ctx, time.Now()); err != nil {
			cm.logger.Printf("❌ Call sweep failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	if cm.sessions != nil {
		// Every 5 minutes: drop abandoned conversation sessions
		_, err = cm.cron.AddFunc("*/5 * * * *", func() {
			if evicted := cm.sessions.EvictIdle(cm.idleTTL); evicted > 0 {
				cm.logger.Printf("🕐 Evicted %d idle sessions", evicted)
			}
			cm.metrics.SetActiveSessions(cm.sessions.Count())
		})

		if err != nil {
			return err
		}
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Println("  - Every minute: dispatch due campaign calls")
	cm.logger.Println("  - Every 5 minutes: evict idle sessions")

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler and waits for a running sweep to finish.
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	<-cm.cron.Stop().Done()
}
