package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is built once at startup and shared read-only afterwards.
type Config struct {
	HTTPPort    int    `mapstructure:"http_port"`
	GRPCPort    int    `mapstructure:"grpc_port"`
	LogLevel    string `mapstructure:"log_level"`
	ServiceName string `mapstructure:"service_name"`

	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Upload   UploadConfig   `mapstructure:"upload"`
	S3       S3Config       `mapstructure:"s3"`
	Consul   ConsulConfig   `mapstructure:"consul"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // mysql | sqlite
	URL    string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// AdminConfig holds the administrator address used to derive the admin role at
// registration. Password is only used to seed the account on first start.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type UploadConfig struct {
	Driver     string `mapstructure:"driver"` // local | s3
	Dir        string `mapstructure:"dir"`
	PublicPath string `mapstructure:"public_path"`
	MaxBytes   int64  `mapstructure:"max_bytes"`
}

type S3Config struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UsePathStyle  bool   `mapstructure:"use_path_style"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// ConsulConfig enables self-registration when Address is set. ServiceAddress
// is the host Consul uses to reach this instance for health checks.
type ConsulConfig struct {
	Address        string        `mapstructure:"address"`
	ServiceAddress string        `mapstructure:"service_address"`
	CheckInterval  time.Duration `mapstructure:"check_interval"`
}

// Load reads .env, config.yaml and GAMEDOMINATE_* environment variables, in
// increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("GAMEDOMINATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Every key needs a default, otherwise AutomaticEnv overrides are invisible to Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 3000)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "gamedominate")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "gamedominate.db")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "gamedominate")
	v.SetDefault("jwt.ttl", time.Hour)

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("upload.driver", "local")
	v.SetDefault("upload.dir", "images")
	v.SetDefault("upload.public_path", "/images")
	v.SetDefault("upload.max_bytes", 5<<20)

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("s3.public_base_url", "")

	v.SetDefault("consul.address", "")
	v.SetDefault("consul.service_address", "")
	v.SetDefault("consul.check_interval", 10*time.Second)
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive, got %s", c.JWT.TTL)
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Upload.Driver {
	case "local":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket must be set when upload.driver is s3")
		}
	default:
		return fmt.Errorf("unsupported upload.driver %q", c.Upload.Driver)
	}
	return nil
}
