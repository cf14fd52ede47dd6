// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: the book collection (internal/http/stores.go)
//   - AuditLog: recording and reading audit events (internal/http/stores.go)
//
// ## Background Job Interfaces
//
//   - AuditEventCleaner: deletes expired book audit events (internal/tasks/purge_audit.go)
//   - CleanupEnqueuer: puts a cleanup task on the queue (internal/scheduler/audit_cleanup.go)
//
// # Adding a New Background Job
//
//  1. Define the task and its queue in internal/tasks/
//
//     type ExportBooksTask struct {
//         Format string `json:"format"`
//     }
//
//     func (t ExportBooksTask) Config() backlite.QueueConfig {
//         return backlite.QueueConfig{Name: "export_books", MaxAttempts: 3}
//     }
//
//  2. Register the queue in entrypoint.go
//
//  3. Schedule it from internal/scheduler/ when it should run periodically
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the entity to Database.Migrate
//
//  4. Add compile-time check:
//
//     var _ http.SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
