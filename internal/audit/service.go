// Package audit records who changed what in the book collection.
//
// Writes happen in the background so a slow audit table never delays a
// response; call Wait during shutdown to flush pending writes.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.Log(context.Background(), event); err != nil {
			log.Printf("[AUDIT] Failed to log %s event: %v", event.EventType, err)
		}
	}()
}

// Wait blocks until all background writes have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogBookAdded records a successful insert.
func (s *Service) LogBookAdded(requestID string, book *entities.Book) {
	id := book.ID
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventBookAdd,
		Description: "Added " + book.String(),
		EntityID:    &id,
		Metadata:    metadata(map[string]any{"author": book.Author, "rating": book.Rating}),
		RequestID:   requestID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogBookAddRejected records an insert that the storage layer refused.
func (s *Service) LogBookAddRejected(requestID, title string, err error) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventBookAdd,
		Description: truncate("Rejected book: "+title, 500),
		RequestID:   requestID,
		Status:      entities.AuditStatusFailed,
		ErrorMsg:    truncate(err.Error(), 500),
	})
}

// LogRatingChanged records a rating edit together with the previous value.
func (s *Service) LogRatingChanged(requestID string, book *entities.Book, previous float64) {
	id := book.ID
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventBookRating,
		Description: "Rated " + book.String(),
		EntityID:    &id,
		Metadata:    metadata(map[string]any{"previous": previous, "rating": book.Rating}),
		RequestID:   requestID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogBookDeleted records a deletion.
func (s *Service) LogBookDeleted(requestID string, book *entities.Book) {
	id := book.ID
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventBookDelete,
		Description: "Deleted " + book.String(),
		EntityID:    &id,
		Metadata:    metadata(map[string]any{"title": book.Title, "author": book.Author, "rating": book.Rating}),
		RequestID:   requestID,
		Status:      entities.AuditStatusSuccess,
	})
}

// GetRecentEvents retrieves the most recent audit events.
func (s *Service) GetRecentEvents(ctx context.Context, limit int) ([]entities.AuditEvent, error) {
	return s.repo.GetRecentEvents(ctx, limit)
}

// GetEventsForBook returns the history of a single book, newest first.
func (s *Service) GetEventsForBook(ctx context.Context, bookID uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForBook(ctx, bookID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func metadata(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
