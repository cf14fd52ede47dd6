package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/readonly"
	"github.com/mrlokans/bookshelf/internal/security"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// render executes an HTML template with the values every page needs.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CSRFField"] = security.CSRFField(c)
	data["ReadOnly"] = c.GetBool(readonly.ContextKey)
	c.HTML(status, name, data)
}

// renderError shows the error page with the given status.
func renderError(c *gin.Context, status int, message string) {
	render(c, status, "error", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// respondNotFound renders a 404 page.
func respondNotFound(c *gin.Context, resource string) {
	renderError(c, http.StatusNotFound, resource+" not found")
}

// respondInternalError logs the error and renders a 500 page.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s) [request %s]: %v", context, security.GetRequestID(c), err)
	renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// respondInternalErrorJSON is respondInternalError for API endpoints.
func respondInternalErrorJSON(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s) [request %s]: %v", context, security.GetRequestID(c), err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// parseID converts a positive decimal id. Anything else is rejected.
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// formatRating prints a rating without trailing zeros.
func formatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}
