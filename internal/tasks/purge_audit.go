package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AuditEventCleaner deletes book audit events older than retention.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// PurgeAuditTask drops book audit history older than KeepDays. A zero
// KeepDays means "use the purger's configured retention".
type PurgeAuditTask struct {
	KeepDays int `json:"keep_days"`
}

func (PurgeAuditTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_book_audit",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// AuditPurger executes PurgeAuditTask against the book audit log.
type AuditPurger struct {
	events      AuditEventCleaner
	defaultKeep int
}

func NewAuditPurger(events AuditEventCleaner, defaultKeepDays int) *AuditPurger {
	return &AuditPurger{events: events, defaultKeep: defaultKeepDays}
}

func (p *AuditPurger) Purge(ctx context.Context, task PurgeAuditTask) error {
	days := task.KeepDays
	if days <= 0 {
		days = p.defaultKeep
	}
	if days <= 0 {
		return errors.New("purge book audit: no retention configured")
	}

	n, err := p.events.DeleteOldEvents(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("purge book audit older than %d days: %w", days, err)
	}
	if n > 0 {
		log.Printf("[AUDIT] Purged %d book audit events older than %d days", n, days)
	}
	return nil
}

// Queue is the backlite queue that hands PurgeAuditTask to Purge.
func (p *AuditPurger) Queue() backlite.Queue {
	return backlite.NewQueue[PurgeAuditTask](p.Purge)
}
