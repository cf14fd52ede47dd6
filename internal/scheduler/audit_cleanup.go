// Package scheduler triggers recurring maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CleanupEnqueuer hands a cleanup run to the task queue.
type CleanupEnqueuer interface {
	EnqueueAuditCleanup(retentionDays int) (string, error)
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// AuditCleanupScheduler periodically enqueues audit retention cleanup.
type AuditCleanupScheduler struct {
	enqueuer      CleanupEnqueuer
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewAuditCleanupScheduler(enqueuer CleanupEnqueuer, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the job and starts the cron loop. It stops on its own when
// ctx is cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(); err != nil {
			log.Printf("[SCHEDULER] Audit cleanup: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SCHEDULER] Audit cleanup: started with schedule '%s', keeping %d days", s.schedule, s.retentionDays)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the cron loop.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("[SCHEDULER] Audit cleanup: stopped")
}

// RunNow enqueues a cleanup immediately.
func (s *AuditCleanupScheduler) RunNow() error {
	id, err := s.enqueuer.EnqueueAuditCleanup(s.retentionDays)
	if err != nil {
		return err
	}
	log.Printf("[SCHEDULER] Audit cleanup: enqueued task %s", id)
	return nil
}

func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or nil when stopped.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}
