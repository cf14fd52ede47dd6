package http

import (
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/session"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books    BookStore
	Database *database.Database

	// Audit trail (optional, /api/audit is only served when set)
	Audit AuditLog

	// Flash messages (optional)
	Sessions *session.Manager

	// CSRF protection is enabled when the secret is not empty
	CSRFSecret    []byte
	SecureCookies bool

	ReadOnly bool

	// UI paths; empty means the embedded copies are served
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
