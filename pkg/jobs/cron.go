package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jlcstudio/site-backend/pkg/models"
)

// PendingLister lists conversions still awaiting payout
type PendingLister interface {
	ListPending(ctx context.Context) ([]models.Conversion, error)
}

// DigestNotifier sends the pending payout summary
type DigestNotifier interface {
	SendPendingPayoutDigest(pending []models.Conversion) error
}

// CronManager manages scheduled jobs
type CronManager struct {
	cron         *cron.Cron
	ledger       PendingLister
	mail         DigestNotifier
	reminderSpec string
	logger       *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(ledger PendingLister, mail DigestNotifier, reminderSpec string, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:         cron.New(),
		ledger:       ledger,
		mail:         mail,
		reminderSpec: reminderSpec,
		logger:       logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	_, err := cm.cron.AddFunc(cm.reminderSpec, cm.RunPayoutReminder)
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Printf("  - Payout reminder digest: %s", cm.reminderSpec)

	return nil
}

// RunPayoutReminder sends the operator a digest of conversions awaiting
// payout. Exported so it can be triggered manually.
func (cm *CronManager) RunPayoutReminder() {
	cm.logger.Println("🕐 Running payout reminder job...")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	pending, err := cm.ledger.ListPending(ctx)
	if err != nil {
		cm.logger.Printf("❌ Failed to list pending payouts: %v", err)
		return
	}

	if len(pending) == 0 {
		cm.logger.Println("✅ No pending payouts")
		return
	}

	cm.logger.Printf("Found %d pending payout(s)", len(pending))

	if err := cm.mail.SendPendingPayoutDigest(pending); err != nil {
		cm.logger.Printf("⚠️  Failed to send payout digest: %v", err)
		return
	}

	cm.logger.Println("✅ Payout reminder job completed")
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}
