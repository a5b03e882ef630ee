package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/models"
	"github.com/rpupo63/portfolio-content-backend/services"
)

const testPassword = "correct horse battery staple"

type failingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *failingNotifier) Notify(ctx context.Context, submission models.ContactSubmission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return errors.New("smtp relay refused connection")
}

type fakeMediaStore struct {
	upload services.Upload
	body   []byte
}

func (f *fakeMediaStore) Put(ctx context.Context, upload services.Upload) (string, error) {
	if err := services.ValidateUpload(upload); err != nil {
		return "", err
	}
	f.upload = upload
	f.body, _ = io.ReadAll(upload.Body)
	return "https://media.example.com/" + upload.Folder + "/" + upload.Filename, nil
}

type testEnv struct {
	db       database.Database
	router   *chi.Mux
	notifier *failingNotifier
	media    *fakeMediaStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gormDB, err := database.OpenSQLite(database.SQLiteOptions{
		Path:         filepath.Join(t.TempDir(), "api.db"),
		Logger:       logger.Discard,
		BusyTimeout:  10 * time.Second,
		MaxOpenConns: 4,
	})
	require.NoError(t, err)

	db := database.New(gormDB)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{db: db, notifier: &failingNotifier{}, media: &fakeMediaStore{}}
	env.router = newRouter(db,
		withConfig(map[string]string{
			"BACKEND_PASSWORD":   testPassword,
			"ADMIN_TOKEN_SECRET": "0123456789abcdef0123456789abcdef",
			"ACCEPTED_ORIGINS":   "https://portfolio.example.com",
		}),
		withStartupTime(time.Now()),
		withNotifier(env.notifier),
		withMediaStore(env.media),
		withAccessLog(httpLoggingMiddleware(zerolog.Nop())),
	)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/admin/token", map[string]string{"password": testPassword}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp tokenResponse
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

type pageBody[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

func (e *testEnv) seedCategory(t *testing.T, name string, techs ...string) (models.TechCategory, []models.Technology) {
	t.Helper()
	ctx := context.Background()
	cat := models.TechCategory{Name: name}
	require.NoError(t, e.db.TechCategoryRepo().Add(ctx, &cat))

	out := make([]models.Technology, 0, len(techs))
	for _, n := range techs {
		tech := models.Technology{Name: n, CategoryID: cat.ID, Proficiency: 4}
		require.NoError(t, e.db.TechnologyRepo().Add(ctx, &tech))
		out = append(out, tech)
	}
	return cat, out
}

func TestDraftProjectsAreNotPublic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft := models.Project{Title: "Draft", Tagline: "not ready"}
	require.NoError(t, env.db.ProjectRepo().Add(ctx, &draft, nil))
	live := models.Project{Title: "Live", Tagline: "shipped", IsPublished: true}
	require.NoError(t, env.db.ProjectRepo().Add(ctx, &live, nil))

	rec := env.do(t, http.MethodGet, "/api/v1/projects", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pageBody[models.Project]](t, rec)
	assert.EqualValues(t, 1, page.Count)
	assert.Equal(t, 20, page.PageSize)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "live", page.Results[0].Slug)

	rec = env.do(t, http.MethodGet, "/api/v1/projects/draft", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errBody := decode[ErrorResponse](t, rec)
	assert.Equal(t, "error", errBody.Status)
}

func TestProjectTechFilterDoesNotDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, techs := env.seedCategory(t, "Languages", "Python", "MicroPython", "Go")

	both := models.Project{Title: "Sensor Hub", Tagline: "edge", IsPublished: true}
	require.NoError(t, env.db.ProjectRepo().Add(ctx, &both, []uuid.UUID{techs[0].ID, techs[1].ID}))
	other := models.Project{Title: "Gateway", Tagline: "proxy", IsPublished: true}
	require.NoError(t, env.db.ProjectRepo().Add(ctx, &other, []uuid.UUID{techs[2].ID}))

	rec := env.do(t, http.MethodGet, "/api/v1/projects?tech=python", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pageBody[models.Project]](t, rec)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, both.ID, page.Results[0].ID)
	assert.Len(t, page.Results[0].Technologies, 2)
}

func TestInvalidListingParameters(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/v1/projects?page=0",
		"/api/v1/projects?page=abc",
		"/api/v1/blog/posts?page=-1",
		"/api/v1/projects?featured=maybe",
	} {
		rec := env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/projects?page=0", nil, "")
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "page", body.Field)

	rec = env.do(t, http.MethodGet, "/api/v1/blog/posts?category=unknown", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[pageBody[models.BlogPost]](t, rec).Results)

	only := models.Project{Title: "Only Project", Tagline: "one", IsPublished: true}
	require.NoError(t, env.db.ProjectRepo().Add(context.Background(), &only, nil))
	rec = env.do(t, http.MethodGet, "/api/v1/projects?page=461168601842738792", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	overflow := decode[pageBody[models.Project]](t, rec)
	assert.EqualValues(t, 1, overflow.Count)
	assert.Empty(t, overflow.Results)
}

func TestConcurrentPostViewsAreCounted(t *testing.T) {
	env := newTestEnv(t)
	post := models.BlogPost{
		Title:       "Agents in Production",
		Excerpt:     "Lessons",
		Content:     "word ",
		Category:    models.CategoryTechnical,
		IsPublished: true,
	}
	require.NoError(t, env.db.BlogPostRepo().Add(context.Background(), &post))

	const readers = 20
	var g errgroup.Group
	for i := 0; i < readers; i++ {
		g.Go(func() error {
			rec := env.do(t, http.MethodGet, "/api/v1/blog/posts/"+post.Slug, nil, "")
			if rec.Code != http.StatusOK {
				return errors.New(rec.Body.String())
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	stored, err := env.db.BlogPostRepo().FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, readers, stored.Views)
}

func TestContactMissingMessageWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/contact", map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"subject": "Hello",
	}, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Contains(t, body.Fields, "message")

	stored, err := env.db.ContactSubmissionRepo().List(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Zero(t, stored.Count)
	assert.Zero(t, env.notifier.calls)
}

func TestContactSucceedsWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/contact", "/api/v1/core/contact"} {
		rec := env.do(t, http.MethodPost, path, map[string]string{
			"name":    "Ada",
			"email":   "ada@example.com",
			"subject": "Consulting",
			"message": "Are you available in March?",
		}, "")

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decode[contactResponse](t, rec)
		assert.True(t, body.Success)
		assert.False(t, body.EmailSent)
		_, err := uuid.Parse(body.ID)
		assert.NoError(t, err)
	}

	stored, err := env.db.ContactSubmissionRepo().List(context.Background(), 1, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.Count)
	assert.Equal(t, 2, env.notifier.calls)
}

func TestMetadataFallsBackToDefault(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/metadata", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[models.SiteConfiguration](t, rec)
	def := models.DefaultSiteConfiguration()
	assert.Equal(t, def.Name, cfg.Name)
	assert.Equal(t, def.Email, cfg.Email)
	assert.Equal(t, def.YearsExperience, cfg.YearsExperience)
}

func TestStatsMergeLiveCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := models.BlogPost{Title: "One", Excerpt: "e", Content: "c", Category: models.CategoryOpinion, IsPublished: true}
	require.NoError(t, env.db.BlogPostRepo().Add(ctx, &post))
	_, err := env.db.BlogPostRepo().ViewBySlug(ctx, post.Slug)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[services.SiteStats](t, rec)
	assert.EqualValues(t, 1, stats.BlogPostsWritten)
	assert.EqualValues(t, 1, stats.TotalBlogViews)
	assert.EqualValues(t, models.DefaultSiteConfiguration().ProjectsCompleted, stats.ProjectsCompleted)
}

func TestHealthListsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[healthResponse](t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.Contains(t, body.Endpoints, "POST /api/v1/contact")
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/projects", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/projects", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/token", map[string]string{"password": "guess"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.adminToken(t)
	rec = env.do(t, http.MethodGet, "/api/v1/admin/projects", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExpiredAdminTokenIsRejected(t *testing.T) {
	auth := newAdminAuth(testPassword, "secret-secret-secret-secret-1234", time.Minute)
	auth.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := auth.issue()
	require.NoError(t, err)

	_, err = newAdminAuth(testPassword, "secret-secret-secret-secret-1234", time.Minute).verify(token)
	assert.Error(t, err)

	_, err = newAdminAuth(testPassword, "another-secret-another-secret-12", time.Minute).verify(token)
	assert.Error(t, err)
}

func TestAdminWritesAreAudited(t *testing.T) {
	var buf bytes.Buffer
	auth := newAdminAuth(testPassword, "secret-secret-secret-secret-1234", time.Hour)
	m := authMiddleware{responder: NewResponder(zerolog.Nop()), logger: zerolog.New(&buf), auth: auth}
	handler := m.authenticate(m.auditWrites(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	token, _, err := auth.issue()
	require.NoError(t, err)

	read := httptest.NewRequest(http.MethodGet, "/api/v1/admin/projects", nil)
	read.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), read)
	assert.Zero(t, buf.Len())

	write := httptest.NewRequest(http.MethodPost, "/api/v1/admin/projects", nil)
	write.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, write)
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, adminTokenSubject, entry["admin"])
	assert.Equal(t, http.MethodPost, entry["method"])
	assert.EqualValues(t, http.StatusCreated, entry["status"])

	unauthenticated := httptest.NewRecorder()
	m.auditWrites(http.NotFoundHandler()).ServeHTTP(unauthenticated, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/projects/x", nil))
	assert.Equal(t, http.StatusUnauthorized, unauthenticated.Code)
}

func TestAdminDisabledWithoutPassword(t *testing.T) {
	env := newTestEnv(t)
	env.router = newRouter(env.db, withAccessLog(httpLoggingMiddleware(zerolog.Nop())))

	rec := env.do(t, http.MethodPost, "/api/v1/admin/token", map[string]string{"password": ""}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	_, techs := env.seedCategory(t, "Frameworks", "LangChain")

	rec := env.do(t, http.MethodPost, "/api/v1/admin/projects", map[string]any{
		"title":          "RAG Pipeline",
		"tagline":        "Retrieval at scale",
		"is_published":   true,
		"technology_ids": []uuid.UUID{techs[0].ID},
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Project](t, rec)
	assert.Equal(t, "rag-pipeline", created.Slug)
	require.Len(t, created.Technologies, 1)

	rec = env.do(t, http.MethodPut, "/api/v1/admin/projects/"+created.ID.String(), map[string]any{
		"title":        "RAG Pipeline v2",
		"slug":         "something-else",
		"tagline":      "Retrieval at scale",
		"is_published": true,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Project](t, rec)
	assert.Equal(t, "RAG Pipeline v2", updated.Title)
	assert.Equal(t, "rag-pipeline", updated.Slug)
	assert.Len(t, updated.Technologies, 1)

	rec = env.do(t, http.MethodPut, "/api/v1/admin/projects/"+created.ID.String()+"/detail", map[string]any{
		"problem_statement": "Search was slow",
		"key_features":      []string{"hybrid search"},
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/projects/rag-pipeline", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	viewed := decode[models.Project](t, rec)
	require.NotNil(t, viewed.Detail)
	assert.Equal(t, "Search was slow", viewed.Detail.ProblemStatement)
	assert.EqualValues(t, 1, viewed.Views)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/projects", map[string]any{"tagline": "no title"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/admin/projects/"+created.ID.String(), nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/v1/admin/projects/"+created.ID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSiteConfigurationGuards(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	cfg := models.DefaultSiteConfiguration()
	rec := env.do(t, http.MethodPost, "/api/v1/admin/site-configuration", cfg, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/admin/site-configuration", cfg, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/admin/site-configuration", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	cfg.Tagline = "Building agents"
	rec = env.do(t, http.MethodPut, "/api/v1/admin/site-configuration", cfg, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/metadata", nil, "")
	assert.Equal(t, "Building agents", decode[models.SiteConfiguration](t, rec).Tagline)
}

func TestAdminCategoryDeleteReportsCascade(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	cat, _ := env.seedCategory(t, "Databases", "Redis", "Postgres")

	rec := env.do(t, http.MethodDelete, "/api/v1/admin/tech-categories/"+cat.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[categoryDeleteResponse](t, rec)
	assert.Equal(t, []string{"Postgres", "Redis"}, body.DeletedTechnologies)

	rec = env.do(t, http.MethodGet, "/api/v1/technologies", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]technologyView](t, rec))
}

func TestAdminContactFlags(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/v1/contact", map[string]string{
		"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "Hello",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[contactResponse](t, rec).ID

	rec = env.do(t, http.MethodPatch, "/api/v1/admin/contacts/"+id, map[string]bool{"is_read": true}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[models.ContactSubmission](t, rec).IsRead)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/contacts?unread=true", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[pageBody[models.ContactSubmission]](t, rec).Results)
}

func TestAdminMediaUpload(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder", "projects/thumbnails"))
	part, err := mw.CreateFormFile("file", "thumb.png")
	require.NoError(t, err)
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "https://media.example.com/projects/thumbnails/thumb.png", decode[uploadResponse](t, rec).URL)
	assert.Equal(t, "image/png", env.media.upload.ContentType)
	assert.Equal(t, png, env.media.body)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "https://portfolio.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "https://portfolio.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestShutdownDoesNotReportServerClosed(t *testing.T) {
	server := Server{Server: &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}}
	errChannel := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		server.Start(errChannel)
		close(done)
	}()

	// Shutdown may win the race against ListenAndServe; both paths return ErrServerClosed
	time.Sleep(50 * time.Millisecond)
	server.ShutdownGracefully(time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after shutdown")
	}
	assert.Empty(t, errChannel)
}
