// Package storage persists uploaded images and returns the reference stored on
// the owning record.
package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"gamedominate/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore saves one uploaded file. field is the form field the file came
// from and prefixes the generated name.
type FileStore interface {
	Save(ctx context.Context, field string, header *multipart.FileHeader) (string, error)
}

// New selects the store configured by upload.driver.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (FileStore, error) {
	switch cfg.Upload.Driver {
	case "local":
		return NewLocalStore(cfg.Upload.Dir)
	case "s3":
		return NewS3Store(ctx, cfg.S3, log)
	default:
		return nil, fmt.Errorf("unsupported upload driver %q", cfg.Upload.Driver)
	}
}

// objectName builds "<field>-<uuid><ext>"; the extension is the only part of
// the client supplied name that is kept.
func objectName(field, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return field + "-" + uuid.NewString() + ext
}
