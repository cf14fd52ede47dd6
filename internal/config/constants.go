package config

const (
	// DefaultDatabasePath is the default path for the SQLite database file
	DefaultDatabasePath = "./new-books-collection.db"
)
