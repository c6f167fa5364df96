package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamedominate/apperrors"
	"gamedominate/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOwners struct {
	owners map[uint]uint
	err    error
	calls  int
}

func (f *fakeOwners) FindOwnerID(_ context.Context, _ models.Resource, id uint) (uint, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	owner, ok := f.owners[id]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	return owner, nil
}

func okHandler(req *restful.Request, resp *restful.Response) {
	id, _ := IdentityFromRequest(req)
	_ = resp.WriteAsJson(id)
}

func serve(t *testing.T, ws *restful.WebService, method, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	container := restful.NewContainer()
	container.Add(ws)
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	container.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, ts *TokenService, id Identity) string {
	t.Helper()
	token, err := ts.Issue(id)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthenticate(t *testing.T) {
	ts := newTestTokenService(t)
	ws := new(restful.WebService)
	ws.Route(ws.GET("/protected").Filter(Authenticate(ts)).To(okHandler))

	t.Run("No header", func(t *testing.T) {
		w := serve(t, ws, http.MethodGet, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Unauthorized")
	})

	t.Run("Scheme only", func(t *testing.T) {
		w := serve(t, ws, http.MethodGet, "/protected", "Bearer")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		w := serve(t, ws, http.MethodGet, "/protected", "Bearer abc.def.ghi")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		id := Identity{ID: 7, Email: "a@example.com", Role: models.RoleUser}
		w := serve(t, ws, http.MethodGet, "/protected", bearer(t, ts, id))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":7,"email":"a@example.com","role":"user"}`, w.Body.String())
	})
}

func TestRequireRoles(t *testing.T) {
	ts := newTestTokenService(t)
	ws := new(restful.WebService)
	ws.Route(ws.POST("/games").Filter(Authenticate(ts)).Filter(RequireRoles(models.RoleAdmin)).To(okHandler))
	ws.Route(ws.GET("/misordered").Filter(RequireRoles(models.RoleAdmin)).To(okHandler))

	user := bearer(t, ts, Identity{ID: 7, Email: "a@example.com", Role: models.RoleUser})
	admin := bearer(t, ts, Identity{ID: 1, Email: "root@example.com", Role: models.RoleAdmin})

	assert.Equal(t, http.StatusForbidden, serve(t, ws, http.MethodPost, "/games", user).Code)
	assert.Equal(t, http.StatusOK, serve(t, ws, http.MethodPost, "/games", admin).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, ws, http.MethodPost, "/games", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, ws, http.MethodGet, "/misordered", admin).Code)
}

func TestOwnerOrAdmin(t *testing.T) {
	ts := newTestTokenService(t)
	owners := &fakeOwners{owners: map[uint]uint{10: 7}}

	newWS := func(lookup OwnerLookup) *restful.WebService {
		ws := new(restful.WebService)
		ws.Route(ws.PUT("/comments/{commentId}").
			Filter(Authenticate(ts)).
			Filter(OwnerOrAdmin(lookup, models.ResourceComment, "commentId", zap.NewNop())).
			To(okHandler))
		return ws
	}
	ws := newWS(owners)

	owner := bearer(t, ts, Identity{ID: 7, Email: "a@example.com", Role: models.RoleUser})
	stranger := bearer(t, ts, Identity{ID: 9, Email: "b@example.com", Role: models.RoleUser})
	admin := bearer(t, ts, Identity{ID: 1, Email: "root@example.com", Role: models.RoleAdmin})

	t.Run("Owner proceeds", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(t, ws, http.MethodPut, "/comments/10", owner).Code)
	})

	t.Run("Other user is forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(t, ws, http.MethodPut, "/comments/10", stranger).Code)
	})

	t.Run("Missing resource is not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(t, ws, http.MethodPut, "/comments/99", owner).Code)
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, serve(t, ws, http.MethodPut, "/comments/abc", owner).Code)
	})

	t.Run("Admin skips lookup", func(t *testing.T) {
		before := owners.calls
		assert.Equal(t, http.StatusOK, serve(t, ws, http.MethodPut, "/comments/10", admin).Code)
		assert.Equal(t, http.StatusOK, serve(t, ws, http.MethodPut, "/comments/99", admin).Code)
		assert.Equal(t, before, owners.calls)
	})

	t.Run("Storage failure is internal and hides detail", func(t *testing.T) {
		broken := newWS(&fakeOwners{err: errors.New("dial tcp: connection refused")})
		w := serve(t, broken, http.MethodPut, "/comments/10", owner)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
		assert.Contains(t, w.Body.String(), apperrors.InternalMessage)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(t, ws, http.MethodPut, "/comments/10", "").Code)
	})
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	id := Identity{ID: 3, Email: "c@example.com", Role: models.RoleUser}
	got, ok := IdentityFromContext(WithIdentity(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
