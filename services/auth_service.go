package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"gamedominate/apperrors"
	"gamedominate/auth"
	"gamedominate/models"
	"gamedominate/repositories"
)

const invalidCredentials = "Invalid credentials"

type AuthService interface {
	Register(ctx context.Context, input RegisterInput, profile *multipart.FileHeader) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Profile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput, profile *multipart.FileHeader) (*models.User, error)
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	Role      models.Role  `json:"role"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// UpdateProfileInput changes only the fields that are set.
type UpdateProfileInput struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

type authService struct {
	users      repositories.UserRepository
	hasher     auth.PasswordHasher
	tokens     *auth.TokenService
	uploads    Uploader
	adminEmail string
}

var _ AuthService = (*authService)(nil)

// NewAuthService builds the registration and login flow. adminEmail is the
// address that registers with the admin role; empty disables that.
func NewAuthService(users repositories.UserRepository, hasher auth.PasswordHasher, tokens *auth.TokenService, uploads Uploader, adminEmail string) AuthService {
	return &authService{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		uploads:    uploads,
		adminEmail: models.NormalizeEmail(adminEmail),
	}
}

func (s *authService) roleFor(email string) models.Role {
	if s.adminEmail != "" && email == s.adminEmail {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func (s *authService) Register(ctx context.Context, input RegisterInput, profile *multipart.FileHeader) (*models.User, error) {
	input.Email = models.NormalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperrors.Conflict("Email already exists")
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Internal("checking existing user", err)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.Internal("hashing password", err)
	}
	picture, err := s.uploads.save(ctx, "profile", profile)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    input.Email,
		Username: input.Username,
		Password: hashed,
		Role:     s.roleFor(input.Email),
		Profile:  picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.Conflict("Email already exists")
		}
		return nil, apperrors.Internal("creating user", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = models.NormalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Unauthenticated(invalidCredentials)
	}
	if err != nil {
		return nil, apperrors.Internal("loading user", err)
	}

	ok, err := s.hasher.Compare(input.Password, user.Password)
	if err != nil {
		return nil, apperrors.Internal("comparing password", err)
	}
	if !ok {
		return nil, apperrors.Unauthenticated(invalidCredentials)
	}

	role := user.Role
	if !role.Valid() {
		role = models.RoleUser
	}
	token, err := s.tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email, Role: role})
	if err != nil {
		return nil, apperrors.Internal("issuing token", err)
	}
	return &LoginResult{
		Token:     token,
		Role:      role,
		ExpiresAt: time.Now().Add(s.tokens.TTL()),
		User:      user,
	}, nil
}

func (s *authService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "loading profile", "User not found")
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput, profile *multipart.FileHeader) (*models.User, error) {
	input.Username = trimmed(input.Username)
	if input.Password != nil && *input.Password == "" {
		input.Password = nil
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "loading profile", "User not found")
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Password != nil {
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, apperrors.Internal("hashing password", err)
		}
		user.Password = hashed
	}
	picture, err := s.uploads.save(ctx, "profile", profile)
	if err != nil {
		return nil, err
	}
	if picture != nil {
		user.Profile = picture
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal("saving profile", err)
	}
	return user, nil
}
