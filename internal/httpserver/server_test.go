package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/records"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

const testPassword = "correct horse"

type stubCovers struct{ cover string }

func (s stubCovers) Resolve(context.Context, string) string { return s.cover }

type testEnv struct {
	handler http.Handler
	store   *memory.Store
	health  *scheduler.HealthMonitor
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config, *deps.Deps)) *testEnv {
	t.Helper()

	log := logger.NewNop()
	st := memory.New([]string{"Book", "Manga"})

	tokens, err := auth.NewHMACTokens("test-secret", nil)
	require.NoError(t, err)
	authenticator, err := auth.NewAuthenticator(testPassword, tokens)
	require.NoError(t, err)

	covers := stubCovers{cover: "https://img.example.com/cover.jpg"}
	clock := func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	cfg := &config.Config{RequestTimeout: 5 * time.Second}
	d := deps.Deps{
		Logger:            log,
		StartTime:         clock(),
		Version:           "test",
		TimeNow:           time.Now,
		Records:           records.New(st, log, records.Options{Now: clock, Covers: covers}),
		Auth:              authenticator,
		Covers:            covers,
		Store:             st,
		Health:            scheduler.NewHealthMonitor(st, log, time.Minute),
		LoginBurst:        5,
		LoginRefillPerMin: 10,
	}
	for _, m := range mutate {
		m(cfg, &d)
	}

	return &testEnv{
		handler: NewRouter(cfg, log, d),
		store:   st,
		health:  d.Health,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

// ─────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{name: "correct password", body: map[string]string{"password": testPassword}, wantStatus: http.StatusOK},
		{name: "wrong password", body: map[string]string{"password": "nope"}, wantStatus: http.StatusUnauthorized, wantError: "Invalid password"},
		{name: "missing password", body: map[string]string{}, wantStatus: http.StatusBadRequest, wantError: "Password is required"},
		{name: "empty body", wantStatus: http.StatusBadRequest, wantError: "Request body is empty"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/auth/login", "", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, rec))
				return
			}
			assert.NotEmpty(t, decode[map[string]string](t, rec)["token"])
		})
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/api/auth/login", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]bool](t, rec)["success"])
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/bookmarks"},
		{http.MethodPut, "/api/bookmarks/x"},
		{http.MethodDelete, "/api/bookmarks/x"},
		{http.MethodGet, "/api/admin/bookmarks"},
		{http.MethodPost, "/api/tags"},
		{http.MethodDelete, "/api/tags?tag=x"},
	}
	tokens := []struct{ name, token string }{
		{"no token", ""},
		{"garbage token", "garbage"},
		{"forged token", "eyJ0aW1lc3RhbXAiOjF9.AAAA"},
	}

	for _, rt := range routes {
		for _, tk := range tokens {
			t.Run(rt.method+" "+rt.path+" "+tk.name, func(t *testing.T) {
				rec := env.do(t, rt.method, rt.path, tk.token, map[string]string{})
				require.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Equal(t, "Unauthorized", errorMessage(t, rec))
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			})
		}
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(_ *config.Config, d *deps.Deps) {
		d.LoginBurst = 2
		d.LoginRefillPerMin = 1
	})

	body := map[string]string{"password": "nope"}
	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "Too many requests", errorMessage(t, rec))
}

// ─────────────────────────────────────────────────────────────────
// Bookmarks
// ─────────────────────────────────────────────────────────────────

func TestBookmarkLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/bookmarks", token, map[string]any{
		"title":      "Dune",
		"url":        "https://example.com/dune",
		"visibility": "public",
		"tags":       []string{"scifi"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Bookmark](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Book", created.Category)
	assert.Equal(t, "2025-03-01T12:00:00.000Z", created.DateAdded)
	assert.Equal(t, "https://img.example.com/cover.jpg", created.CoverURL)
	assert.Equal(t, []string{"scifi"}, created.Tags)

	rec = env.do(t, http.MethodPut, "/api/bookmarks/"+created.ID, token, map[string]any{
		"progress":  "p.120",
		"id":        "hijacked",
		"dateAdded": "1999-01-01T00:00:00.000Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.Bookmark](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.DateAdded, updated.DateAdded)
	assert.Equal(t, "p.120", updated.Progress)
	assert.Equal(t, "Dune", updated.Title)

	rec = env.do(t, http.MethodGet, "/api/bookmarks/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p.120", decode[domain.Bookmark](t, rec).Progress)

	rec = env.do(t, http.MethodDelete, "/api/bookmarks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]bool](t, rec)["success"])

	rec = env.do(t, http.MethodGet, "/api/bookmarks/"+created.ID, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", errorMessage(t, rec))

	rec = env.do(t, http.MethodDelete, "/api/bookmarks/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/bookmarks/"+created.ID, token, map[string]any{"progress": "done"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookmarkValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	tests := []struct {
		name      string
		body      map[string]any
		wantError string
	}{
		{name: "missing title", body: map[string]any{"url": "https://example.com"}, wantError: "Title is required"},
		{name: "missing url", body: map[string]any{"title": "x"}, wantError: "Url is required"},
		{name: "bad url", body: map[string]any{"title": "x", "url": "ftp://example.com"}, wantError: "Url must be a valid http(s) URL"},
		{name: "bad visibility", body: map[string]any{"title": "x", "url": "https://example.com", "visibility": "friends"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/bookmarks", token, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, rec))
			}
		})
	}

	list, err := env.store.ListBookmarks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPublicListFiltersPrivateAndKeepsOrder(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	for _, b := range []struct{ title, visibility, category string }{
		{"A", "public", "Book"},
		{"B", "private", "Book"},
		{"C", "public", "Manga"},
		{"D", "public", "Book"},
	} {
		rec := env.do(t, http.MethodPost, "/api/bookmarks", token, map[string]any{
			"title": b.title, "url": "https://example.com/" + b.title,
			"visibility": b.visibility, "category": b.category,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	titles := func(rec *httptest.ResponseRecorder) []string {
		var out []string
		for _, b := range decode[[]domain.Bookmark](t, rec) {
			out = append(out, b.Title)
		}
		return out
	}

	rec := env.do(t, http.MethodGet, "/api/bookmarks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"A", "C", "D"}, titles(rec))

	rec = env.do(t, http.MethodGet, "/api/bookmarks?category=Book", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"A", "D"}, titles(rec))

	rec = env.do(t, http.MethodGet, "/api/admin/bookmarks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"A", "B", "C", "D"}, titles(rec))

	rec = env.do(t, http.MethodGet, "/api/admin/bookmarks?visibility=private", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"B"}, titles(rec))

	rec = env.do(t, http.MethodGet, "/api/admin/bookmarks?visibility=friends", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/bookmarks?sort=nope", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{"/api/bookmarks", "/api/tags"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String(), path)
	}
}

// ─────────────────────────────────────────────────────────────────
// Tags, categories, covers
// ─────────────────────────────────────────────────────────────────

func TestTags(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/tags", token, map[string]string{"tag": "  scifi "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "scifi", decode[map[string]string](t, rec)["tag"])

	rec = env.do(t, http.MethodPost, "/api/tags", token, map[string]string{"tag": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"scifi"}, decode[[]string](t, rec))

	rec = env.do(t, http.MethodDelete, "/api/tags", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Tag is required", errorMessage(t, rec))

	rec = env.do(t, http.MethodDelete, "/api/tags?tag=missing", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/tags?tag=scifi", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCategories(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Book", "Manga"}, decode[[]string](t, rec))
}

func TestFetchCover(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/fetch-cover", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "url param required", errorMessage(t, rec))

	rec = env.do(t, http.MethodGet, "/api/fetch-cover?url=https://example.com/page", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://img.example.com/cover.jpg", decode[map[string]string](t, rec)["coverUrl"])
}

func TestFetchCoverEmptyOnFailure(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(_ *config.Config, d *deps.Deps) {
		d.Covers = stubCovers{}
	})

	rec := env.do(t, http.MethodGet, "/api/fetch-cover?url=https://example.com/page", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"coverUrl":""}`, rec.Body.String())
}

// ─────────────────────────────────────────────────────────────────
// Ops endpoints and access restrictions
// ─────────────────────────────────────────────────────────────────

func TestOpsEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.health.Check(context.Background())

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "memory", health["store"])

	rec = env.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/infra", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	infra := decode[struct {
		Mode       string `json:"mode"`
		Components map[string]struct {
			OK        bool   `json:"ok"`
			Backend   string `json:"backend"`
			Bookmarks *int   `json:"bookmarks"`
		} `json:"components"`
	}](t, rec)
	assert.Equal(t, "ok", infra.Mode)
	assert.True(t, infra.Components["store"].OK)
	assert.Equal(t, "memory", infra.Components["store"].Backend)
	require.NotNil(t, infra.Components["store"].Bookmarks)
	assert.Equal(t, 0, *infra.Components["store"].Bookmarks)
}

func TestOpsEndpointsRestrictedByCIDR(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(_ *config.Config, d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})

	// httptest requests come from 192.0.2.1.
	for _, path := range []string{"/healthz", "/readyz", "/infra"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}

	rec := env.do(t, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRestrictedByHost(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(cfg *config.Config, _ *deps.Deps) {
		cfg.AllowedHosts = []string{"shelf.example.com"}
	})

	// httptest requests carry Host example.com.
	rec := env.do(t, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Host = "shelf.example.com:443"
	ok := httptest.NewRecorder()
	env.handler.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)

	rec = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(cfg *config.Config, _ *deps.Deps) {
		cfg.CORSOrigins = []string{"https://app.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/bookmarks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
