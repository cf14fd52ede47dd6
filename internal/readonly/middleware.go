// Package readonly blocks every request that would change the collection
// while the application runs in read-only mode.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKey stores the read-only flag in the Gin context for templates.
const ContextKey = "read_only"

const blockedMessage = "This action is disabled in read-only mode"

// Middleware blocks write operations in read-only mode.
type Middleware struct {
	enabled bool
	// GET paths that still mutate state
	mutatingGETs []string
}

// NewMiddleware creates a read-only middleware. GET /delete counts as a
// write because the delete link is a plain anchor.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{
		enabled:      enabled,
		mutatingGETs: []string{"/delete"},
	}
}

// IsEnabled returns whether read-only mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKey, m.enabled)

		if !m.enabled || !m.isWrite(c.Request) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

func (m *Middleware) isWrite(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		for _, path := range m.mutatingGETs {
			if r.URL.Path == path {
				return true
			}
		}
		return false
	case http.MethodOptions:
		return false
	default:
		return true
	}
}

func (m *Middleware) respondBlocked(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     blockedMessage,
			"read_only": true,
		})
		return
	}

	c.String(http.StatusForbidden, blockedMessage)
	c.Abort()
}
