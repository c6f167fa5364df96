package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"gamedominate/models"
	"gamedominate/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	t.Run("Register as user", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/register", "", map[string]any{
			"username": "link", "email": "Link@Hyrule.io", "password": "triforce",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var user models.User
		env := decode(t, rec, &user)
		assert.Equal(t, "Register success", env.Message)
		assert.Equal(t, "link@hyrule.io", user.Email)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NotContains(t, rec.Body.String(), "triforce")
	})

	t.Run("Register the admin address with a form", func(t *testing.T) {
		form := url.Values{"username": {"root"}, "email": {"ADMIN@gamedominate.io"}, "password": {"hunter22"}}
		req := strings.NewReader(form.Encode())
		rec := h.raw(t, http.MethodPost, "/auth/register", "application/x-www-form-urlencoded", req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var user models.User
		decode(t, rec, &user)
		assert.Equal(t, models.RoleAdmin, user.Role)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/register", "", map[string]any{
			"username": "link2", "email": "link@hyrule.io", "password": "triforce",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Email already exists", decode(t, rec, nil).Message)
	})

	t.Run("Invalid body", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/register", "", map[string]any{"username": "zelda", "password": "short"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email is required", decode(t, rec, nil).Message)
	})

	var login services.LoginResult
	t.Run("Login", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "link@hyrule.io", "password": "wrong-one"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decode(t, rec, nil).Message)

		rec = h.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "link@hyrule.io", "password": "triforce"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &login)
		assert.NotEmpty(t, login.Token)
		assert.Equal(t, models.RoleUser, login.Role)
	})

	t.Run("Me and update profile", func(t *testing.T) {
		bearer := "Bearer " + login.Token
		rec := h.do(t, http.MethodGet, "/auth/me", bearer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var me models.User
		decode(t, rec, &me)
		assert.Equal(t, "link", me.Username)

		rec = h.multipart(t, http.MethodPut, "/auth/update-profile", bearer,
			map[string]string{"username": "hero", "password": ""}, "profile", "face.jpg", "jpeg-bytes")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &me)
		assert.Equal(t, "hero", me.Username)
		require.NotNil(t, me.Profile)
		assert.True(t, strings.HasPrefix(*me.Profile, "profile-"))
		assert.True(t, strings.HasSuffix(*me.Profile, ".jpg"))

		// The blank password field must leave the old one in place.
		rec = h.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "link@hyrule.io", "password": "triforce"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUserAdministration(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, 1, models.RoleAdmin)
	player := h.user(t, 2, models.RoleUser)
	h.user(t, 3, models.RoleUser)

	t.Run("Listing requires admin", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/users", player, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = h.do(t, http.MethodGet, "/users?page=1&page_size=2", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var page services.UserPage
		decode(t, rec, &page)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Users, 2)
	})

	var created models.User
	t.Run("Create with role", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/users", admin, map[string]any{
			"username": "mod", "email": "mod@example.com", "password": "moderator", "role": "ADMIN",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &created)
		assert.Equal(t, models.RoleAdmin, created.Role)

		rec = h.do(t, http.MethodPost, "/users", admin, map[string]any{
			"username": "x", "email": "x@example.com", "password": "moderator", "role": "superuser",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Update", func(t *testing.T) {
		rec := h.do(t, http.MethodPut, fmt.Sprintf("/users/%d", created.ID), admin, map[string]any{"role": "user"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated models.User
		decode(t, rec, &updated)
		assert.Equal(t, models.RoleUser, updated.Role)

		rec = h.do(t, http.MethodPut, "/users/404", admin, map[string]any{"username": "ghost"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User with ID : 404 not found", decode(t, rec, nil).Message)
	})

	t.Run("Delete is owner or admin", func(t *testing.T) {
		rec := h.do(t, http.MethodDelete, "/users/3", player, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = h.do(t, http.MethodDelete, "/users/2", player, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User with ID : 2 has been deleted", decode(t, rec, nil).Message)

		rec = h.do(t, http.MethodDelete, "/users/3", admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = h.do(t, http.MethodGet, "/users/3", admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
