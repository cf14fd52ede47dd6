package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/security"
	"github.com/mrlokans/bookshelf/internal/session"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Runs after the server has drained so in-flight audit writes are flushed
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// App holds every long-lived dependency of a running server.
type App struct {
	Router *gin.Engine

	db         *database.Database
	auditSvc   *audit.Service
	taskClient *tasks.Client
	scheduler  *scheduler.AuditCleanupScheduler
	cancel     context.CancelFunc
}

// NewApp opens the database, migrates the schema and wires the router.
// Call Shutdown to release everything it started.
func NewApp(cfg *config.Config, version string) (*App, error) {
	if cfg.Global.Debug {
		gin.SetMode(gin.DebugMode)
		cfg.Database.LogSQL = true
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{db: db, cancel: cancel}

	routerCfg := http_controllers.RouterConfig{
		Books:         books.NewRepository(db.DB),
		Database:      db,
		SecureCookies: cfg.Security.SecureCookies,
		ReadOnly:      cfg.Global.ReadOnly,
		TemplatesPath: cfg.UI.TemplatesPath,
		StaticPath:    cfg.UI.StaticPath,
		Version:       version,
	}

	if cfg.Global.ReadOnly {
		log.Printf("Read-only mode enabled - write operations will be blocked")
	}

	if cfg.Audit.Enabled {
		app.auditSvc = audit.NewService(auditrepo.NewRepository(db.DB))
		routerCfg.Audit = app.auditSvc
	}

	if cfg.Tasks.Enabled {
		if err := app.startTasks(ctx, cfg); err != nil {
			app.Shutdown(ctx)
			return nil, err
		}
	} else if cfg.Audit.Enabled {
		log.Printf("WARNING: task queue is disabled, old audit events will not be cleaned up")
	}

	sessions, err := newSessions(db, cfg.Security)
	if err != nil {
		app.Shutdown(ctx)
		return nil, err
	}
	routerCfg.Sessions = sessions

	if cfg.Security.CSRFEnabled {
		routerCfg.CSRFSecret, err = csrfSecret(cfg.Security.CSRFSecret)
		if err != nil {
			app.Shutdown(ctx)
			return nil, err
		}
	}

	app.Router, err = http_controllers.NewRouter(routerCfg)
	if err != nil {
		app.Shutdown(ctx)
		return nil, err
	}
	return app, nil
}

func (a *App) startTasks(ctx context.Context, cfg *config.Config) error {
	taskClient, err := tasks.NewClient(cfg.Database.Path, tasks.Config{
		Workers:         cfg.Tasks.Workers,
		ReleaseAfter:    cfg.Tasks.ReleaseAfter,
		CleanupInterval: cfg.Tasks.CleanupInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize task queue: %w", err)
	}
	a.taskClient = taskClient

	if a.auditSvc != nil {
		taskClient.Register(tasks.NewAuditPurger(a.auditSvc, cfg.Audit.RetentionDays).Queue())
	}
	taskClient.Start(ctx)

	if a.auditSvc != nil {
		a.scheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start audit cleanup scheduler: %w", err)
		}
	}
	return nil
}

// newSessions stores sessions next to the books in SQLite. Other drivers
// keep them in memory.
func newSessions(db *database.Database, cfg config.Security) (*session.Manager, error) {
	if db.Driver() != config.DriverSQLite {
		return session.NewManager(nil, cfg)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	manager, err := session.NewManager(sqlDB, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}
	return manager, nil
}

// csrfSecret decodes the configured secret, or generates one when none is
// set. A generated secret invalidates open forms on restart.
func csrfSecret(configured string) ([]byte, error) {
	if configured == "" {
		secret, err := security.GenerateSecret()
		if err != nil {
			return nil, err
		}
		log.Printf("Generated CSRF secret (set CSRF_SECRET to persist)")
		return secret, nil
	}
	if secret, err := hex.DecodeString(configured); err == nil {
		return secret, nil
	}
	// Not hex, use as raw bytes
	return []byte(configured), nil
}

// Shutdown stops background work, flushes pending audit writes and closes
// the databases.
func (a *App) Shutdown(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
	}
	a.cancel()
	if a.auditSvc != nil {
		a.auditSvc.Wait()
	}
	if a.taskClient != nil {
		if err := a.taskClient.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	if err := a.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// Run starts the server and blocks until it is told to stop.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting bookshelf v%s", version)

	app, err := NewApp(cfg, version)
	if err != nil {
		log.Fatalf("%v", err)
	}

	Serve(app.Router, cfg, app.Shutdown)
}

// Migrate creates the schema and exits.
func Migrate(cfg *config.Config) error {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return db.Migrate()
}
