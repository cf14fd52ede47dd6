package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// APIController exposes the collection and its audit trail as JSON.
type APIController struct {
	store BookStore
	audit AuditLog
}

func NewAPIController(store BookStore, audit AuditLog) *APIController {
	return &APIController{
		store: store,
		audit: audit,
	}
}

// ListBooks returns every book in the order of the list page.
func (controller *APIController) ListBooks(c *gin.Context) {
	all, err := controller.store.ListAll(c.Request.Context())
	if err != nil {
		respondInternalErrorJSON(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": all, "count": len(all)})
}

// RecentAudit returns the newest audit events, ?limit=N (default 50).
// ?book_id=N narrows the trail to one book.
func (controller *APIController) RecentAudit(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxAuditLimit)
	}

	var (
		events []entities.AuditEvent
		err    error
	)
	if raw := c.Query("book_id"); raw != "" {
		bookID, parseErr := strconv.ParseUint(raw, 10, 0)
		if parseErr != nil || bookID == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "book_id must be a positive integer"})
			return
		}
		events, err = controller.audit.GetEventsForBook(c.Request.Context(), uint(bookID))
		if len(events) > limit {
			events = events[:limit]
		}
	} else {
		events, err = controller.audit.GetRecentEvents(c.Request.Context(), limit)
	}
	if err != nil {
		respondInternalErrorJSON(c, err, "list audit events")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
