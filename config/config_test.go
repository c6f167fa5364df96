package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Missing secret", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("GAMEDOMINATE_JWT_SECRET", "")

		_, err := Load()
		assert.EqualError(t, err, "jwt.secret must be set")
	})

	t.Run("Environment overrides", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("GAMEDOMINATE_JWT_SECRET", "s3cret")
		t.Setenv("GAMEDOMINATE_JWT_TTL", "15m")
		t.Setenv("GAMEDOMINATE_ADMIN_EMAIL", "boss@example.com")
		t.Setenv("GAMEDOMINATE_HTTP_PORT", "8081")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.JWT.Secret)
		assert.Equal(t, 15*time.Minute, cfg.JWT.TTL)
		assert.Equal(t, "boss@example.com", cfg.Admin.Email)
		assert.Equal(t, 8081, cfg.HTTPPort)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/images", cfg.Upload.PublicPath)
	})

	t.Run("Config file", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		t.Setenv("GAMEDOMINATE_JWT_SECRET", "")
		yaml := "jwt:\n  secret: from-file\ndatabase:\n  driver: mysql\n  url: user:pw@tcp(db:3306)/games\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.JWT.Secret)
		assert.Equal(t, "mysql", cfg.Database.Driver)
		assert.Equal(t, time.Hour, cfg.JWT.TTL)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			JWT:      JWTConfig{Secret: "k", TTL: time.Minute},
			Upload:   UploadConfig{Driver: "local"},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.JWT.TTL = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Upload.Driver = "s3"
	assert.EqualError(t, cfg.Validate(), "s3.bucket must be set when upload.driver is s3")
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
