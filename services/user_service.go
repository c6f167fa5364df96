package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"gamedominate/apperrors"
	"gamedominate/auth"
	"gamedominate/models"
	"gamedominate/repositories"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// UserService is the administrator's view of accounts. Access control happens
// in the route filters.
type UserService interface {
	List(ctx context.Context, page, pageSize int) (*UserPage, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, input CreateUserInput, profile *multipart.FileHeader) (*models.User, error)
	Update(ctx context.Context, id uint, input UpdateUserInput, profile *multipart.FileHeader) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

type CreateUserInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"` // admin | user, defaults to user
}

type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=191"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *string `json:"role"`
}

type UserPage struct {
	Users    []models.User `json:"users"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type userService struct {
	repo    repositories.UserRepository
	hasher  auth.PasswordHasher
	uploads Uploader
}

var _ UserService = (*userService)(nil)

func NewUserService(repo repositories.UserRepository, hasher auth.PasswordHasher, uploads Uploader) UserService {
	return &userService{repo: repo, hasher: hasher, uploads: uploads}
}

func (s *userService) List(ctx context.Context, page, pageSize int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	users, total, err := s.repo.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, apperrors.Internal("listing users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return &UserPage{Users: users, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "loading user", "User with ID : %d not found", id)
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, input CreateUserInput, profile *multipart.FileHeader) (*models.User, error) {
	input.Email = models.NormalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	role := models.RoleUser
	if input.Role != "" {
		parsed, err := models.ParseRole(input.Role)
		if err != nil {
			return nil, apperrors.BadRequest("role must be admin or user")
		}
		role = parsed
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
		Role:     role,
		Profile:  picture,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.Conflict("Email already exists")
		}
		return nil, apperrors.Internal("creating user", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, input UpdateUserInput, profile *multipart.FileHeader) (*models.User, error) {
	if input.Email = trimmed(input.Email); input.Email != nil {
		email := models.NormalizeEmail(*input.Email)
		input.Email = &email
	}
	input.Username = trimmed(input.Username)
	input.Role = trimmed(input.Role)
	if input.Password != nil && *input.Password == "" {
		input.Password = nil
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "loading user", "User with ID : %d not found", id)
	}

	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.repo.FindByEmail(ctx, *input.Email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, apperrors.Conflict("Email address is already in use by another account")
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.Internal("checking email uniqueness", err)
		}
		user.Email = *input.Email
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Role != nil {
		role, err := models.ParseRole(*input.Role)
		if err != nil {
			return nil, apperrors.BadRequest("role must be admin or user")
		}
		user.Role = role
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

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.Conflict("Email address is already in use by another account")
		}
		return nil, apperrors.Internal("saving user", err)
	}
	return user, nil
}

// Delete removes the account and everything it owns.
func (s *userService) Delete(ctx context.Context, id uint) error {
	return storeError(s.repo.Delete(ctx, id), "deleting user", "User with ID : %d not found", id)
}
