package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamedominate/auth"
	"gamedominate/config"
	"gamedominate/database/databasetest"
	"gamedominate/metrics"
	"gamedominate/models"
	"gamedominate/repositories"
	"gamedominate/services"
	"gamedominate/storage"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testAdminEmail = "admin@gamedominate.io"

type harness struct {
	db        *gorm.DB
	tokens    *auth.TokenService
	metrics   *metrics.HTTPMetrics
	container *restful.Container
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := databasetest.New(t)
	tokens, err := auth.NewTokenService(config.JWTConfig{Secret: "test-secret", Issuer: "test", TTL: time.Hour})
	require.NoError(t, err)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	hasher := auth.BcryptHasher{Cost: 4}
	uploads := services.Uploader{Store: store, MaxBytes: 1 << 20}
	users := repositories.NewUserRepository(db)
	deps := Deps{Tokens: tokens, Owners: repositories.NewOwnerRepository(db)}
	m := metrics.NewHTTPMetrics(prometheus.NewRegistry())

	c := NewContainer(ContainerOptions{
		Metrics: m,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		ImagesDir:  store.Dir(),
		ImagesPath: "/images",
	},
		NewAuthController(services.NewAuthService(users, hasher, tokens, uploads, testAdminEmail), deps),
		NewUserController(services.NewUserService(users, hasher, uploads), deps),
		NewGameController(services.NewGameService(repositories.NewGameRepository(db), repositories.NewReviewRepository(db), uploads), deps),
		NewNewsController(services.NewNewsService(repositories.NewNewsRepository(db), uploads), deps),
		NewCommunityController(services.NewCommunityService(repositories.NewCommunityRepository(db), uploads), deps),
	)
	return &harness{db: db, tokens: tokens, metrics: m, container: c}
}

// user inserts an account with a fixed id and returns a bearer header for it.
func (h *harness) user(t *testing.T, id uint, role models.Role) string {
	t.Helper()
	require.NoError(t, h.db.Create(&models.User{
		ID:       id,
		Email:    fmt.Sprintf("user%d@example.com", id),
		Username: fmt.Sprintf("user%d", id),
		Password: "not-a-real-hash",
		Role:     role,
	}).Error)
	token, err := h.tokens.Issue(auth.Identity{ID: id, Email: fmt.Sprintf("user%d@example.com", id), Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func (h *harness) do(t *testing.T, method, path, authorization string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", restful.MIME_JSON)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.container.ServeHTTP(rec, req)
	return rec
}

func (h *harness) multipart(t *testing.T, method, path, authorization string, fields map[string]string, fileField, fileName, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.container.ServeHTTP(rec, req)
	return rec
}

func (h *harness) raw(t *testing.T, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.container.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func TestSystemRoutes(t *testing.T) {
	h := newHarness(t)

	t.Run("Welcome", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome to GameDominate+", rec.Body.String())
	})

	t.Run("Health", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decode(t, rec, nil).Message)
	})

	t.Run("Unknown path", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/nowhere/at/all", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decode(t, rec, nil)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, "Not Found", env.Message)
	})

	t.Run("OpenAPI document", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/apidocs.json", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var doc struct {
			Info  struct{ Title string } `json:"info"`
			Paths map[string]any         `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "GameDominate+ API", doc.Info.Title)
		assert.Contains(t, doc.Paths, "/community/{postId}/comments/replies/{replyId}")
		assert.Contains(t, doc.Paths, "/games/by-platform")
	})

	t.Run("Metrics", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/metrics", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `route="/healthz"`)
	})
}

func TestAuthenticationAndRoles(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, 1, models.RoleAdmin)
	player := h.user(t, 2, models.RoleUser)
	game := map[string]any{"title": "Hollow Knight", "genre": []string{"Metroidvania"}, "platform": []string{"PC"}}

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantMessage   string
	}{
		{"No token", "", http.StatusUnauthorized, "Unauthorized"},
		{"Malformed header", "Token abc", http.StatusUnauthorized, "Unauthorized"},
		{"Forged token", "Bearer not.a.jwt", http.StatusUnauthorized, "Unauthorized"},
		{"Wrong role", player, http.StatusForbidden, "Forbidden"},
		{"Admin", admin, http.StatusCreated, "Game created successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/games", tt.authorization, game)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decode(t, rec, nil).Message)
		})
	}

	var count int64
	require.NoError(t, h.db.Model(&models.Game{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPathParameters(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/games/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid game ID", decode(t, rec, nil).Message)

	rec = h.do(t, http.MethodGet, "/games/99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Game ID : 99 not found", decode(t, rec, nil).Message)

	rec = h.do(t, http.MethodGet, "/news/0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecoverHandler(t *testing.T) {
	c := NewContainer(ContainerOptions{}, panicking{})
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"Internal server error"}`, rec.Body.String())
}

type panicking struct{}

func (panicking) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/boom")
	ws.Route(ws.GET("").To(func(*restful.Request, *restful.Response) { panic("kaboom") }))
}

func TestMetricsCountRouteTemplates(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/games/1", "", nil)
	h.do(t, http.MethodGet, "/games/2", "", nil)

	rec := httptest.NewRecorder()
	h.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/games/{id}",status="404"} 2`)
}
