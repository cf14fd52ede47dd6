// Package database owns the connection to the relational store.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and schema migration
//	├── books/           # Book records (list, get, insert, rating update, delete)
//	└── audit/           # Audit trail of book changes
//
// # Usage
//
//	db, err := database.NewDatabase(cfg.Database)
//	if err != nil { ... }
//	defer db.Close()
//
//	if err := db.Migrate(); err != nil { ... }
//
//	booksRepo := books.NewRepository(db.DB)
//	all, err := booksRepo.ListAll(ctx)
//
// Both SQLite (default) and MySQL are supported; the backend is selected with
// config.Database.Driver. Errors raised by either driver are translated by
// gorm, so repositories only inspect gorm sentinel errors.
package database
