package entities

import "fmt"

// Title and author column width.
const MaxTextLength = 250

type Book struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Title  string  `gorm:"uniqueIndex;size:250;not null" json:"title" validate:"required,max=250"`
	Author string  `gorm:"size:250;not null" json:"author" validate:"required,max=250"`
	Rating float64 `gorm:"not null" json:"rating" validate:"finite"`
}

func (Book) TableName() string {
	return "books"
}

func (b Book) String() string {
	return fmt.Sprintf("<Book %s>", b.Title)
}
