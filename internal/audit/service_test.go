package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	repo := auditRepo.NewRepository(db)
	return NewService(repo), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventBookAdd,
		Description: "Test event",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(context.Background(), event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "Test event", saved.Description)
}

func TestService_LogBookAdded(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogBookAdded("req-1", &entities.Book{ID: 7, Title: "Dune", Author: "Frank Herbert", Rating: 4.8})
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("event_type = ?", entities.AuditEventBookAdd).First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, entities.AuditStatusSuccess, event.Status)
	assert.Equal(t, "Added <Book Dune>", event.Description)
	assert.Equal(t, "req-1", event.RequestID)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(7), *event.EntityID)
	assert.Contains(t, event.Metadata, `"author":"Frank Herbert"`)
}

func TestService_LogBookAddRejected(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogBookAddRejected("req-2", "Dune", errors.New("a book with this title already exists"))
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("event_type = ?", entities.AuditEventBookAdd).First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Nil(t, event.EntityID)
	assert.Contains(t, event.ErrorMsg, "already exists")
}

func TestService_LogRatingChanged(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogRatingChanged("", &entities.Book{ID: 3, Title: "Dune", Rating: 5}, 4.8)
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("event_type = ?", entities.AuditEventBookRating).First(&event).Error
	require.NoError(t, err)
	assert.Contains(t, event.Metadata, `"previous":4.8`)
	assert.Contains(t, event.Metadata, `"rating":5`)
}

func TestService_LogBookDeleted(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogBookDeleted("req-3", &entities.Book{ID: 9, Title: "1984", Author: "George Orwell", Rating: 4.5})
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("event_type = ?", entities.AuditEventBookDelete).First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, "Deleted <Book 1984>", event.Description)
	assert.Contains(t, event.Metadata, `"title":"1984"`)
}

func TestService_GetRecentEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := uint(1); i <= 3; i++ {
		svc.LogBookDeleted("", &entities.Book{ID: i, Title: "Book"})
	}
	svc.Wait()

	events, err := svc.GetRecentEvents(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{
		EventType: entities.AuditEventBookAdd,
		CreatedAt: time.Now().Add(-40 * 24 * time.Hour),
	}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{
		EventType: entities.AuditEventBookDelete,
	}))

	deleted, err := svc.DeleteOldEvents(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&entities.AuditEvent{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestTruncate(t *testing.T) {
	testCases := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{strings.Repeat("x", 600), 500, strings.Repeat("x", 497) + "..."},
		{"Война и мир", 10, "Вой..."},
		{strings.Repeat("é", 300), 500, strings.Repeat("é", 248) + "..."},
	}

	for _, tc := range testCases {
		result := truncate(tc.input, tc.maxLen)
		assert.Equal(t, tc.expected, result)
		assert.True(t, utf8.ValidString(result), "truncate(%q) split a rune", tc.input)
		assert.LessOrEqual(t, len(result), tc.maxLen)
	}
}

func TestService_LogBookAddRejected_MultibyteTitle(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogBookAddRejected("req-9", strings.Repeat("ñ", 400), errors.New("title too long"))
	svc.Wait()

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved).Error)
	assert.True(t, utf8.ValidString(saved.Description))
	assert.True(t, strings.HasSuffix(saved.Description, "..."))
	assert.Equal(t, entities.AuditStatusFailed, saved.Status)
}

func TestService_GetEventsForBook(t *testing.T) {
	svc, _ := setupTestService(t)

	svc.LogBookAdded("", &entities.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Rating: 4.8})
	svc.LogBookAdded("", &entities.Book{ID: 2, Title: "Emma", Author: "Jane Austen", Rating: 4})
	svc.Wait()
	svc.LogRatingChanged("", &entities.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Rating: 5}, 4.8)
	svc.Wait()

	events, err := svc.GetEventsForBook(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, entities.AuditEventBookRating, events[0].EventType)
	assert.Equal(t, entities.AuditEventBookAdd, events[1].EventType)
}
