package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite DatabaseDriver = "sqlite" // Single file database (default)
	DriverMySQL  DatabaseDriver = "mysql"  // External MySQL server, see DATABASE_DSN
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Security
		Audit
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		Debug                    bool // gin debug mode and SQL statement logging
		ReadOnly                 bool // Reject every mutating request with 403
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // SQLite file
		DSN    string // MySQL data source name
		LogSQL bool
	}
	UI struct {
		TemplatesPath string // Empty means the templates compiled into the binary
		StaticPath    string
	}
	Security struct {
		CSRFEnabled     bool
		CSRFSecret      string // Hex or raw; generated at startup when empty
		SecureCookies   bool   // Set to true when served over HTTPS
		SessionLifetime time.Duration
	}
	Audit struct {
		Enabled         bool
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// loadDotEnv reads a .env file from the working directory if there is one.
// Variables already present in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

func NewConfig() *Config {
	loadDotEnv()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("debug", false)
	v.SetDefault("read_only", false)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	v.SetDefault("templates_path", "")
	v.SetDefault("static_path", "")

	// Security defaults
	v.SetDefault("csrf_enabled", true)
	v.SetDefault("csrf_secret", "")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("session_lifetime", "24h")

	// Audit defaults
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	debug := v.GetBool("DEBUG")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Debug:                    debug,
			ReadOnly:                 v.GetBool("READ_ONLY"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
			LogSQL: debug,
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Security: Security{
			CSRFEnabled:     v.GetBool("CSRF_ENABLED"),
			CSRFSecret:      v.GetString("CSRF_SECRET"),
			SecureCookies:   v.GetBool("SECURE_COOKIES"),
			SessionLifetime: v.GetDuration("SESSION_LIFETIME"),
		},
		Audit: Audit{
			Enabled:         v.GetBool("AUDIT_ENABLED"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
