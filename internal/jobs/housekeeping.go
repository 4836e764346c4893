// Package jobs schedules the periodic housekeeping the teacher ran from a
// reconciliation loop: here, a dataset-version cache refresh and an
// expired-audit-record sweep, both via robfig/cron.
package jobs

import (
	"context"
	"time"

	"github.com/greengate/screening/internal/datasetregistry"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/interfaces"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Housekeeping owns the two scheduled ticks SPEC_FULL.md's ambient stack
// calls for: invalidating C2's in-memory version cache, and sweeping
// expired audit records past their retention window (§4.6, §4.9).
type Housekeeping struct {
	cron     *cron.Cron
	db       *gorm.DB
	registry datasetregistry.Registry
	log      interfaces.Logger
}

// New builds a Housekeeping scheduler; Start registers its ticks.
func New(db *gorm.DB, registry datasetregistry.Registry, log interfaces.Logger) *Housekeeping {
	return &Housekeeping{
		cron:     cron.New(),
		db:       db,
		registry: registry,
		log:      log,
	}
}

// Start registers the two ticks and begins running them in the background.
// The dataset-version cache invalidates every 5 minutes (matching the
// teacher's reconciliation interval); the expiry sweep runs hourly and
// deletes every row whose ExpiresAt has already passed.
func (h *Housekeeping) Start() error {
	if _, err := h.cron.AddFunc("@every 5m", h.invalidateDatasetVersions); err != nil {
		return err
	}
	if _, err := h.cron.AddFunc("@hourly", h.sweepExpiredRecords); err != nil {
		return err
	}
	h.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for any in-flight tick to finish.
func (h *Housekeeping) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
}

func (h *Housekeeping) invalidateDatasetVersions() {
	h.registry.Invalidate()
	h.log.Info("dataset version cache invalidated")
}

func (h *Housekeeping) sweepExpiredRecords() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := h.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&entities.ValidationReport{})
	if result.Error != nil {
		h.log.Error("expired audit record sweep failed", zapErr(result.Error)...)
		return
	}
	if result.RowsAffected > 0 {
		h.log.Info("swept expired audit records", zapInt("count", int(result.RowsAffected))...)
	}
}
