// Package jobs runs the scheduled background work: refreshing the
// reconciled working set and logging a daily follow-up summary.
package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec is used when no refresh schedule is configured
const DefaultRefreshSpec = "@every 5m"

// DailySummarySpec runs the follow-up summary every morning
const DailySummarySpec = "0 8 * * *"

// CronManager manages scheduled jobs
type CronManager struct {
	cron        *cron.Cron
	monitor     *WorkingSetMonitor
	refreshSpec string
	logger      *log.Logger

	mu   sync.RWMutex
	last *Snapshot
}

// NewCronManager creates a new cron manager
func NewCronManager(monitor *WorkingSetMonitor, refreshSpec string, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}
	if refreshSpec == "" {
		refreshSpec = DefaultRefreshSpec
	}
	return &CronManager{
		cron:        cron.New(cron.WithLocation(monitor.loc)),
		monitor:     monitor,
		refreshSpec: refreshSpec,
		logger:      logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	if _, err := cm.cron.AddFunc(cm.refreshSpec, func() { cm.RunRefresh() }); err != nil {
		return err
	}

	_, err := cm.cron.AddFunc(DailySummarySpec, func() {
		cm.logger.Println("🕐 Running daily follow-up summary...")
		snap := cm.RunRefresh()
		if snap == nil {
			return
		}
		cm.logger.Printf("📊 Follow-up summary:")
		cm.logger.Printf("  Active leads: %d", snap.Active)
		cm.logger.Printf("  Pending follow-ups: %d", snap.Counters.PendingFollowUps)
		cm.logger.Printf("  Overdue: %d %v", len(snap.Overdue), snap.Overdue)
		cm.logger.Printf("  Excluded rows: %v", snap.Excluded)
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Printf("  - %s: Refresh working set", cm.refreshSpec)
	cm.logger.Printf("  - %s: Log follow-up summary", DailySummarySpec)
	return nil
}

// RunRefresh refreshes the working set once and keeps the snapshot. It
// returns nil when the refresh failed.
func (cm *CronManager) RunRefresh() *Snapshot {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	snap, err := cm.monitor.Refresh(ctx)
	if err != nil {
		cm.logger.Printf("❌ Working set refresh failed: %v", err)
		return nil
	}
	if snap.Degraded {
		cm.logger.Printf("⚠️ Working set refreshed from local data")
	}

	cm.mu.Lock()
	cm.last = snap
	cm.mu.Unlock()
	return snap
}

// Last returns the most recent snapshot, or nil before the first refresh
func (cm *CronManager) Last() *Snapshot {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.last
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler and waits for running jobs
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	<-cm.cron.Stop().Done()
}
