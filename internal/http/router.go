package http

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/readonly"
	"github.com/mrlokans/bookshelf/internal/security"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

//go:embed static
var embeddedStatic embed.FS

var templateFuncs = template.FuncMap{
	"formatRating": formatRating,
}

// loadTemplates parses the page templates from templatesPath, or the
// embedded copies when it is empty.
func loadTemplates(templatesPath string) (*template.Template, error) {
	tmpl := template.New("").Funcs(templateFuncs)
	if templatesPath == "" {
		return tmpl.ParseFS(embeddedTemplates, "templates/*.html")
	}
	return tmpl.ParseGlob(templatesPath + "/*.html")
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	tmpl, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(security.RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(security.HeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(security.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadAndSave())
	}

	router.Use(readonly.NewMiddleware(cfg.ReadOnly).Handler())

	router.SetHTMLTemplate(tmpl)

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	} else {
		static, err := fs.Sub(embeddedStatic, "static")
		if err != nil {
			return nil, fmt.Errorf("failed to load static files: %w", err)
		}
		router.StaticFS("/static", http.FS(static))
	}

	health := NewHealthController(cfg.Database, cfg.Books, cfg.Version)
	booksController := NewBooksController(cfg.Books, cfg.Audit, cfg.Sessions)
	apiController := NewAPIController(cfg.Books, cfg.Audit)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", ping)

	// JSON API
	router.GET("/api/books", apiController.ListBooks)
	if cfg.Audit != nil {
		router.GET("/api/audit", apiController.RecentAudit)
	}

	// Pages
	router.GET("/", booksController.List)
	router.GET("/add", booksController.AddForm)
	router.POST("/add", booksController.Add)
	router.GET("/edit", booksController.EditForm)
	router.POST("/edit", booksController.Edit)
	router.GET("/delete", booksController.Delete)

	router.NoRoute(func(c *gin.Context) {
		respondNotFound(c, "Page")
	})

	return router, nil
}
