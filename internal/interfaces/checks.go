package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookStore implementations
var _ http.BookStore = (*books.Repository)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

// AuditLog implementations
var _ http.AuditLog = (*audit.Service)(nil)

// AuditEventCleaner implementations
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Background Jobs
// =============================================================================

// CleanupEnqueuer implementations
var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)
