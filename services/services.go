// Package services holds the application logic between the HTTP controllers
// and the repositories. Every error returned from this package is an
// *apperrors.AppError.
package services

import (
	"context"
	"errors"
	"mime/multipart"
	"reflect"
	"strings"

	"gamedominate/apperrors"
	"gamedominate/storage"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput turns the first failed rule into a BadRequest.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Internal("validating input", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.BadRequest("%s is required", fe.Field())
	case "email":
		return apperrors.BadRequest("%s must be a valid email address", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return apperrors.BadRequest("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return apperrors.BadRequest("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return apperrors.BadRequest("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return apperrors.BadRequest("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return apperrors.BadRequest("%s must be %s or more", fe.Field(), fe.Param())
	case "lte":
		return apperrors.BadRequest("%s must be %s or less", fe.Field(), fe.Param())
	default:
		return apperrors.BadRequest("%s is invalid", fe.Field())
	}
}

// storeError wraps a repository failure. A missing row becomes NotFound with
// the given message; anything else is internal.
func storeError(err error, op string, notFound string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.NotFound(notFound, args...)
	default:
		return apperrors.Internal(op, err)
	}
}

// Uploader saves optional image uploads attached to a request.
type Uploader struct {
	Store    storage.FileStore
	MaxBytes int64
}

// save returns nil when no file was sent.
func (u Uploader) save(ctx context.Context, field string, header *multipart.FileHeader) (*string, error) {
	if header == nil {
		return nil, nil
	}
	if u.MaxBytes > 0 && header.Size > u.MaxBytes {
		return nil, apperrors.BadRequest("%s exceeds the upload limit of %d bytes", field, u.MaxBytes)
	}
	if u.Store == nil {
		return nil, apperrors.Internal("saving upload", errors.New("no file store configured"))
	}
	ref, err := u.Store.Save(ctx, field, header)
	if err != nil {
		return nil, apperrors.Internal("saving upload", err)
	}
	return &ref, nil
}

// trimmed trims an optional field and drops it when nothing is left, so an
// empty form value leaves the stored value alone.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
