package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router *gin.Engine
	db     *database.Database
	books  *books.Repository
	audit  *audit.Service
}

func setupTestApp(t *testing.T, mutate ...func(*RouterConfig)) *testApp {
	t.Helper()

	db, err := database.NewDatabase(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "books.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	sessions, err := session.NewManager(nil, config.Security{})
	require.NoError(t, err)

	app := &testApp{
		db:    db,
		books: books.NewRepository(db.DB),
		audit: audit.NewService(auditrepo.NewRepository(db.DB)),
	}
	t.Cleanup(app.audit.Wait)

	cfg := RouterConfig{
		Books:    app.books,
		Database: db,
		Audit:    app.audit,
		Sessions: sessions,
		Version:  "test",
	}
	for _, m := range mutate {
		m(&cfg)
	}

	app.router, err = NewRouter(cfg)
	require.NoError(t, err)
	return app
}

func (app *testApp) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) mustInsert(t *testing.T, title, author string, rating float64) *entities.Book {
	t.Helper()
	book, err := app.books.Insert(context.Background(), title, author, rating)
	require.NoError(t, err)
	return book
}

var errStorageDown = errors.New("storage unavailable")

// failingStore fails every call with errStorageDown.
type failingStore struct{}

func (failingStore) ListAll(context.Context) ([]entities.Book, error) { return nil, errStorageDown }
func (failingStore) GetByID(context.Context, uint) (*entities.Book, error) {
	return nil, errStorageDown
}
func (failingStore) Insert(context.Context, string, string, float64) (*entities.Book, error) {
	return nil, errStorageDown
}
func (failingStore) UpdateRating(context.Context, uint, float64) (*entities.Book, error) {
	return nil, errStorageDown
}
func (failingStore) Delete(context.Context, uint) error { return errStorageDown }
func (failingStore) Count(context.Context) (int64, error) { return 0, errStorageDown }
