package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamedominate/apperrors"
	"gamedominate/auth"
	"gamedominate/config"
	"gamedominate/models"
	"gamedominate/repositories"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table in migration order.
var Models = []any{
	&models.User{},
	&models.Game{},
	&models.GameReview{},
	&models.News{},
	&models.CommunityPost{},
	&models.Comment{},
}

// Open connects with the configured driver and migrates the schema.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database connection successful and migrations complete", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// NewGormLogger sends SQL logs through zap. Slow queries are warnings and
// statements are only logged at debug level.
func NewGormLogger(log *zap.Logger) logger.Interface {
	level := logger.Warn
	if log.Core().Enabled(zapcore.DebugLevel) {
		level = logger.Info
	}
	return logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}

// SeedAdmin creates the configured administrator account if it does not exist.
// Nothing is seeded without both an admin email and password.
func SeedAdmin(ctx context.Context, users repositories.UserRepository, hasher auth.PasswordHasher, cfg config.AdminConfig, log *zap.Logger) error {
	email := models.NormalizeEmail(cfg.Email)
	if email == "" || cfg.Password == "" {
		return nil
	}

	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	hash, err := hasher.Hash(cfg.Password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	admin := &models.User{
		Email:    email,
		Username: "admin",
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	log.Info("Created initial admin user", zap.String("email", email), zap.Uint("id", admin.ID))
	return nil
}
