// Package session keeps short-lived per-browser state, currently the flash
// message shown after a redirect.
package session

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/bookshelf/internal/config"
)

// Session data keys
const (
	KeyFlash     = "flash"
	KeyFlashKind = "flash_kind"
)

// Manager wraps scs.SessionManager with application-specific methods.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager. Sessions are persisted in
// the SQLite database when sqlDB is given, and kept in memory otherwise.
func NewManager(sqlDB *sql.DB, cfg config.Security) (*Manager, error) {
	sm := scs.New()

	if sqlDB != nil {
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, fmt.Errorf("failed to create sessions table: %w", err)
		}
		sm.Store = sqlite3store.New(sqlDB)
	} else {
		sm.Store = memstore.New()
	}

	if cfg.SessionLifetime > 0 {
		sm.Lifetime = cfg.SessionLifetime
	}

	sm.Cookie.Name = "bookshelf_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}
