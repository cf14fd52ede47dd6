package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/security"
	"github.com/mrlokans/bookshelf/internal/session"
)

// BooksController serves the HTML pages of the collection.
type BooksController struct {
	store    BookStore
	audit    AuditLog
	sessions *session.Manager
}

func NewBooksController(store BookStore, audit AuditLog, sessions *session.Manager) *BooksController {
	if audit == nil {
		audit = noopAudit{}
	}
	return &BooksController{
		store:    store,
		audit:    audit,
		sessions: sessions,
	}
}

// List renders every book ordered by title.
func (controller *BooksController) List(c *gin.Context) {
	all, err := controller.store.ListAll(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	render(c, http.StatusOK, "index", gin.H{
		"Title": "My Library",
		"Books": all,
		"Flash": controller.popFlash(c),
	})
}

// AddForm renders an empty add form.
func (controller *BooksController) AddForm(c *gin.Context) {
	controller.renderAdd(c, http.StatusOK, addBookForm{}, "")
}

// Add creates a book from the submitted form.
func (controller *BooksController) Add(c *gin.Context) {
	var form addBookForm
	if err := c.ShouldBind(&form); err != nil {
		form.normalize()
		controller.renderAdd(c, http.StatusBadRequest, form, formError(err))
		return
	}
	form.normalize()

	rating, err := parseRating(form.Rating)
	if err != nil {
		controller.renderAdd(c, http.StatusBadRequest, form, formError(err))
		return
	}

	requestID := security.GetRequestID(c)
	book, err := controller.store.Insert(c.Request.Context(), form.Title, form.Author, rating)
	switch {
	case errors.Is(err, books.ErrConflict):
		controller.audit.LogBookAddRejected(requestID, form.Title, err)
		controller.renderAdd(c, http.StatusConflict, form, fmt.Sprintf("A book titled %q already exists.", form.Title))
		return
	case books.IsValidation(err):
		controller.audit.LogBookAddRejected(requestID, form.Title, err)
		controller.renderAdd(c, http.StatusBadRequest, form, formError(err))
		return
	case err != nil:
		respondInternalError(c, err, "insert book")
		return
	}

	controller.audit.LogBookAdded(requestID, book)
	controller.flash(c, session.FlashSuccess, fmt.Sprintf("Added %q by %s.", book.Title, book.Author))
	c.Redirect(http.StatusSeeOther, "/")
}

// EditForm renders the rating form of one book.
func (controller *BooksController) EditForm(c *gin.Context) {
	book, ok := controller.lookup(c, c.Query("id"))
	if !ok {
		return
	}
	controller.renderEdit(c, http.StatusOK, book, formatRating(book.Rating), "")
}

// Edit changes the rating of one book.
func (controller *BooksController) Edit(c *gin.Context) {
	var form editRatingForm
	if err := c.ShouldBind(&form); err != nil {
		respondNotFound(c, "Book")
		return
	}

	book, ok := controller.lookup(c, form.ID)
	if !ok {
		return
	}

	rating, err := parseRating(form.Rating)
	if err != nil {
		controller.renderEdit(c, http.StatusBadRequest, book, form.Rating, formError(err))
		return
	}

	previous := book.Rating
	updated, err := controller.store.UpdateRating(c.Request.Context(), book.ID, rating)
	switch {
	case errors.Is(err, books.ErrNotFound):
		respondNotFound(c, "Book")
		return
	case books.IsValidation(err):
		controller.renderEdit(c, http.StatusBadRequest, book, form.Rating, formError(err))
		return
	case err != nil:
		respondInternalError(c, err, "update rating")
		return
	}

	controller.audit.LogRatingChanged(security.GetRequestID(c), updated, previous)
	controller.flash(c, session.FlashSuccess, fmt.Sprintf("Rated %q %s.", updated.Title, formatRating(updated.Rating)))
	c.Redirect(http.StatusSeeOther, "/")
}

// Delete removes one book and returns to the list.
func (controller *BooksController) Delete(c *gin.Context) {
	book, ok := controller.lookup(c, c.Query("id"))
	if !ok {
		return
	}

	err := controller.store.Delete(c.Request.Context(), book.ID)
	if errors.Is(err, books.ErrNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	controller.audit.LogBookDeleted(security.GetRequestID(c), book)
	controller.flash(c, session.FlashSuccess, fmt.Sprintf("Deleted %q.", book.Title))
	c.Redirect(http.StatusSeeOther, "/")
}

// lookup resolves a raw id into a stored book. A missing, malformed or
// unknown id renders 404; a storage failure renders 500.
func (controller *BooksController) lookup(c *gin.Context, rawID string) (*entities.Book, bool) {
	id, ok := parseID(rawID)
	if !ok {
		respondNotFound(c, "Book")
		return nil, false
	}

	book, err := controller.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, books.ErrNotFound) {
		respondNotFound(c, "Book")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return nil, false
	}
	return book, true
}

func (controller *BooksController) renderAdd(c *gin.Context, status int, form addBookForm, message string) {
	render(c, status, "add", gin.H{
		"Title": "Add Book",
		"Form":  form,
		"Error": message,
	})
}

func (controller *BooksController) renderEdit(c *gin.Context, status int, book *entities.Book, rating, message string) {
	render(c, status, "edit_rating", gin.H{
		"Title":  "Edit Rating",
		"Book":   book,
		"Rating": rating,
		"Error":  message,
	})
}

func (controller *BooksController) flash(c *gin.Context, kind session.FlashKind, message string) {
	if controller.sessions != nil {
		controller.sessions.PutFlash(c.Request, kind, message)
	}
}

func (controller *BooksController) popFlash(c *gin.Context) *session.Flash {
	if controller.sessions == nil {
		return nil
	}
	return controller.sessions.PopFlash(c.Request)
}
