package services

import (
	"context"
	"testing"

	"gamedominate/apperrors"
	"gamedominate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDerivesRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.auth.Register(ctx, RegisterInput{Username: "boss", Email: " ADMIN@gamedominate.io ", Password: "secret123"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "admin@gamedominate.io", admin.Email)
	assert.NotEqual(t, "secret123", admin.Password)

	user, err := f.auth.Register(ctx, RegisterInput{Username: "pleb", Email: "pleb@example.com", Password: "secret123"}, upload(t, "profile", "me.png", 3))
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "profile-me.png", *user.Profile)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.auth.Register(context.Background(), RegisterInput{Username: "again", Email: "Alice@Example.com", Password: "secret123"}, nil)
	assertKind(t, err, apperrors.KindConflict)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "alice")

	res, err := f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.Role)
	assert.Equal(t, id, res.User.ID)

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.ID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, err = f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	assertKind(t, err, apperrors.KindUnauthenticated)
	_, err = f.auth.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "secret123"})
	assertKind(t, err, apperrors.KindUnauthenticated)
	assert.Equal(t, "Invalid credentials", apperrors.From(err).PublicMessage())
	_, err = f.auth.Login(ctx, LoginInput{Email: "alice@example.com"})
	assertKind(t, err, apperrors.KindBadRequest)
}

func TestLoginUsesPersistedRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "promoted")

	role := "admin"
	_, err := f.admin.Update(ctx, id, UpdateUserInput{Role: &role}, nil)
	require.NoError(t, err)

	res, err := f.auth.Login(ctx, LoginInput{Email: "promoted@example.com", Password: "secret123"})
	require.NoError(t, err)
	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "alice")

	name := "  alicia "
	user, err := f.auth.UpdateProfile(ctx, id, UpdateProfileInput{Username: &name}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Username)

	password := "new-secret"
	_, err = f.auth.UpdateProfile(ctx, id, UpdateProfileInput{Password: &password}, upload(t, "profile", "new.jpg", 1))
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "new-secret"})
	require.NoError(t, err)

	profile, err := f.auth.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alicia", profile.Username)
	require.NotNil(t, profile.Profile)
	assert.Equal(t, "profile-new.jpg", *profile.Profile)

	_, err = f.auth.Profile(ctx, 999)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestUpdateProfileIgnoresBlankFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "alice")

	blank := ""
	spaces := "   "
	user, err := f.auth.UpdateProfile(ctx, id, UpdateProfileInput{Username: &spaces, Password: &blank}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "secret123"})
	assert.NoError(t, err)
}
