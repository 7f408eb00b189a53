// Package testutil wires in-memory dependencies for service and handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/auth"
	"github.com/oggyb/udinder/internal/config"
	"github.com/oggyb/udinder/internal/db"
	"github.com/oggyb/udinder/internal/events"
	"github.com/oggyb/udinder/internal/server"
)

const TokenSecret = "test-secret"

// NewDB spins up an in-memory SQLite DB private to t and applies migrations.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	// a single connection keeps transactions and plain reads on one handle
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewAppContext wires a test DB, a recording publisher and a token issuer.
func NewAppContext(t *testing.T) (*app.AppContext, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	appCtx := app.New(
		NewDB(t),
		rec,
		auth.NewTokenIssuer(TokenSecret, 30*time.Minute),
		slog.New(slog.NewTextHandler(io.Discard, nil)), // discard logs in tests
	)
	appCtx.BcryptCost = bcrypt.MinCost
	return appCtx, rec
}

// SeedUser inserts a user with a bcrypt hash of password plus its empty profile.
func SeedUser(t *testing.T, gdb *gorm.DB, id uint64, email, password string) db.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	u := db.User{ID: id, Email: email, Name: fmt.Sprintf("user%d", id), PasswordHash: hash}
	require.NoError(t, gdb.Create(&u).Error)
	require.NoError(t, gdb.Create(&db.Profile{UserID: id}).Error)
	return u
}

// SeedLike inserts a directed like edge.
func SeedLike(t *testing.T, gdb *gorm.DB, from, to uint64) db.Match {
	t.Helper()
	m := db.Match{UserID: from, LikedUserID: to}
	require.NoError(t, gdb.Create(&m).Error)
	return m
}

// Recorder is an events.Publisher that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *Recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// NewRouter builds the production router around the given registrars.
func NewRouter(appCtx *app.AppContext, registrars ...server.Registrar) *gin.Engine {
	cfg := &config.Config{}
	cfg.App.ENV = "test"
	return server.NewRouter(cfg, appCtx.Logger, registrars...)
}

// Do sends a request with an optional JSON body and returns the recorder.
func Do(t *testing.T, h http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the recorder body into out.
func Decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}
