// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable;
// Valkey is replaced by an in-process miniredis.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"techtrove/internal/cache"
	"techtrove/internal/database"
	"techtrove/internal/middleware"
	"techtrove/internal/session"
	"techtrove/internal/store"
)

const testTokenSecret = "handler-test-secret"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "techtrove")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "techtrove")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Valkey   *redis.Client
	Sessions *session.Store
	Catalog  *store.CategoryStore
	Users    *store.UserStore
	Admins   *store.AdminStore
	Listing  *cache.ListingCache
	Tools    *Tools
	UserH    *Users
	Auth     *Auth
}

// newTestEnv creates a complete test environment with all handler
// dependencies wired together.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	vk := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { vk.Close() })

	sessions := session.NewStore(vk)
	catalog := store.NewCategoryStore(db)
	users := store.NewUserStore(db)
	admins := store.NewAdminStore(db)
	listing := cache.NewListingCache(vk, time.Minute)

	return &testEnv{
		DB:       db,
		Valkey:   vk,
		Sessions: sessions,
		Catalog:  catalog,
		Users:    users,
		Admins:   admins,
		Listing:  listing,
		Tools:    NewTools(catalog, listing, testTokenSecret),
		UserH:    NewUsers(users, catalog, testTokenSecret),
		Auth:     NewAuth(sessions, admins),
	}
}

// cleanCategories removes test categories between runs. Call in t.Cleanup().
func (e *testEnv) cleanCategories(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		e.DB.Exec("DELETE FROM categories WHERE LOWER(name) = LOWER($1)", name)
	}
}

func (e *testEnv) cleanUsers(t *testing.T, emails ...string) {
	t.Helper()
	for _, email := range emails {
		e.DB.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

func (e *testEnv) cleanAdmins(t *testing.T, emails ...string) {
	t.Helper()
	for _, email := range emails {
		e.DB.Exec("DELETE FROM admins WHERE email = $1", email)
	}
}

// withChiURLParams adds chi URL parameters to a request.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withSession adds session data to a request context using the middleware key.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, data))
}

// adminSession creates session data for an authenticated admin.
func adminSession(adminID uuid.UUID, email string, twoFADone bool) *session.Data {
	return &session.Data{
		AdminID:   adminID,
		Email:     email,
		TwoFADone: twoFADone,
	}
}
