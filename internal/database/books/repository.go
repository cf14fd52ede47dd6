// Package books provides database operations for the book collection.
//
// Every book lives in a single table, ordered by title for listing. The
// repository classifies failures so callers can map them to responses:
//
//   - ErrNotFound: no row with the requested id
//   - ErrConflict: the title is already taken
//   - *ValidationError: the input was rejected before reaching the database
//
// Any other error is a storage failure.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.Insert(ctx, "Dune", "Frank Herbert", 4.8)
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAll returns every book ordered by title.
func (r *Repository) ListAll(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetByID retrieves a book or returns ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func getByID(db *gorm.DB, id uint) (*entities.Book, error) {
	var book entities.Book
	err := db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &book, nil
}

// Insert creates a book. The id is assigned by the database.
func (r *Repository) Insert(ctx context.Context, title, author string, rating float64) (*entities.Book, error) {
	book := &entities.Book{
		Title:  title,
		Author: author,
		Rating: rating,
	}
	if err := validateStruct(book); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert book %q: %w", title, err)
	}
	return book, nil
}

// UpdateRating changes the rating of an existing book and returns the
// updated record. No other column is written.
func (r *Repository) UpdateRating(ctx context.Context, id uint, rating float64) (*entities.Book, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&entities.Book{}).Where("id = ?", id).Update("rating", rating)
	if result.Error != nil {
		return nil, fmt.Errorf("update rating of book %d: %w", id, result.Error)
	}
	// MySQL reports zero affected rows for an unchanged value as well, so
	// the re-read decides whether the book exists.
	return getByID(db, id)
}

// Delete removes a book permanently. The title becomes available again.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete book %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored books.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error
	return total, err
}

// isDuplicate recognises unique constraint violations. gorm translates them
// for both supported drivers; the message check covers SQLite builds whose
// errors slip past the translator.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
