package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookshelf/internal/database/books"
)

// addBookForm is the POST /add payload. The rating stays a string until
// parseRating so an empty or malformed value is reported, not zeroed.
type addBookForm struct {
	Title  string `form:"title" binding:"required"`
	Author string `form:"author" binding:"required"`
	Rating string `form:"rating" binding:"required"`
}

func (f *addBookForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	f.Rating = strings.TrimSpace(f.Rating)
}

// editRatingForm is the POST /edit payload.
type editRatingForm struct {
	ID     string `form:"id"`
	Rating string `form:"rating"`
}

// parseRating converts the submitted rating. Range and finiteness are
// checked by the storage layer.
func parseRating(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &books.ValidationError{Field: "rating", Reason: "is required"}
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &books.ValidationError{Field: "rating", Reason: "must be a number"}
	}
	return rating, nil
}

// formError turns a binding failure into a message fit for the form.
func formError(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			return field + " is required"
		}
		return fmt.Sprintf("%s is invalid", field)
	}

	var ve *books.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return "the form could not be read"
}
