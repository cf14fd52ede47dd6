// Package audit stores the trail of changes made to the book collection.
package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const defaultLimit = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// GetRecentEvents returns up to limit events, most recent first.
func (r *Repository) GetRecentEvents(ctx context.Context, limit int) ([]entities.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var events []entities.AuditEvent
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// GetEventsForBook returns every event that references the given book id.
func (r *Repository) GetEventsForBook(ctx context.Context, bookID uint) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.WithContext(ctx).
		Where("entity_id = ?", bookID).
		Order("created_at DESC, id DESC").
		Find(&events).Error
	return events, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
