package http

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// BookStore is the storage the book handlers depend on.
type BookStore interface {
	ListAll(ctx context.Context) ([]entities.Book, error)
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	Insert(ctx context.Context, title, author string, rating float64) (*entities.Book, error)
	UpdateRating(ctx context.Context, id uint, rating float64) (*entities.Book, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// AuditLog records changes made through the handlers.
type AuditLog interface {
	LogBookAdded(requestID string, book *entities.Book)
	LogBookAddRejected(requestID, title string, err error)
	LogRatingChanged(requestID string, book *entities.Book, previous float64)
	LogBookDeleted(requestID string, book *entities.Book)
	GetRecentEvents(ctx context.Context, limit int) ([]entities.AuditEvent, error)
	GetEventsForBook(ctx context.Context, bookID uint) ([]entities.AuditEvent, error)
}

// noopAudit is used when auditing is disabled.
type noopAudit struct{}

func (noopAudit) LogBookAdded(string, *entities.Book) {}
func (noopAudit) LogBookAddRejected(string, string, error) {}
func (noopAudit) LogRatingChanged(string, *entities.Book, float64) {}
func (noopAudit) LogBookDeleted(string, *entities.Book) {}
func (noopAudit) GetRecentEvents(context.Context, int) ([]entities.AuditEvent, error) {
	return nil, nil
}
func (noopAudit) GetEventsForBook(context.Context, uint) ([]entities.AuditEvent, error) {
	return nil, nil
}
