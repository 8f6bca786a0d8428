package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gocast_backend/internal/auth"
	"gocast_backend/internal/logger"
	"gocast_backend/internal/storage"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, mysql, sqlite
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	JWT struct {
		Secret   string `yaml:"secret"`
		TTLHours int    `yaml:"ttl_hours"`
		Issuer   string `yaml:"issuer"`
	} `yaml:"jwt"`

	// Redis is optional; without it logout cannot revoke tokens.
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Storage struct {
		Backend    string `yaml:"backend"` // inline, filesystem, gridfs, s3
		BasePath   string `yaml:"base_path"`
		LegacyRead bool   `yaml:"legacy_read"`
		Mongo      struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
			Bucket   string `yaml:"bucket"`
		} `yaml:"mongo"`
		S3 struct {
			Endpoint  string `yaml:"endpoint"`
			Bucket    string `yaml:"bucket"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			Region    string `yaml:"region"`
			UseSSL    bool   `yaml:"use_ssl"`
		} `yaml:"s3"`
	} `yaml:"storage"`

	Upload struct {
		InlineMaxSize int64 `yaml:"inline_max_size"` // bytes
		MaxSize       int64 `yaml:"max_size"`        // bytes, filesystem and object backends
	} `yaml:"upload"`

	// Admin is seeded at startup when no admin with that username exists.
	Admin struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"admin"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// LoadConfig reads .env, then the YAML file at CONFIG_PATH (optional), then
// environment overrides, and fills defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return Load(path)
}

func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("config file not found, using defaults and environment", "path", path)
	default:
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Host, "SERVER_HOST")
	setString(&c.Server.Env, "SERVER_ENV")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.JWT.Issuer, "JWT_ISSUER")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.BasePath, "STORAGE_BASE_PATH")
	setString(&c.Storage.Mongo.URI, "MONGO_URI")
	setString(&c.Storage.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.Storage.S3.Bucket, "S3_BUCKET")
	setString(&c.Storage.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&c.Storage.S3.SecretKey, "S3_SECRET_KEY")
	setString(&c.Admin.Username, "ADMIN_USERNAME")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = strings.Split(v, ",")
	}

	for _, o := range []struct {
		dst *int
		key string
	}{
		{&c.Server.Port, "SERVER_PORT"},
		{&c.JWT.TTLHours, "JWT_TTL_HOURS"},
		{&c.Redis.DB, "REDIS_DB"},
	} {
		if v := os.Getenv(o.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", o.key, err)
			}
			*o.dst = n
		}
	}

	if v := os.Getenv("STORAGE_LEGACY_READ"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid STORAGE_LEGACY_READ: %w", err)
		}
		c.Storage.LegacyRead = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "gocast.db"
	}
	if c.JWT.TTLHours == 0 {
		c.JWT.TTLHours = 24
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "gocast"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "filesystem"
	}
	if c.Storage.BasePath == "" && (c.Storage.Backend == "filesystem" || c.Storage.Backend == "local") {
		c.Storage.BasePath = "./uploads"
	}
	if c.Upload.InlineMaxSize == 0 {
		c.Upload.InlineMaxSize = storage.DefaultInlineMaxSize
	}
	if c.Upload.MaxSize == 0 {
		c.Upload.MaxSize = storage.DefaultMaxSize
	}
	if c.Admin.Username == "" {
		c.Admin.Username = "admin"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	}
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if c.Server.Env == "production" {
			return errors.New("jwt.secret is required in production")
		}
		c.JWT.Secret = "dev-secret-change-me"
		logger.Warn("jwt.secret not set, using an insecure development secret")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for driver %s", c.Database.Driver)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTLHours) * time.Hour
}

// MaxUploadSize is the largest payload any registered backend accepts.
func (c *Config) MaxUploadSize() int64 {
	return max(c.Upload.InlineMaxSize, c.Upload.MaxSize)
}

func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend:       c.Storage.Backend,
		BasePath:      c.Storage.BasePath,
		LegacyRead:    c.Storage.LegacyRead,
		InlineMaxSize: c.Upload.InlineMaxSize,
		MaxSize:       c.Upload.MaxSize,
		Mongo: storage.MongoConfig{
			URI:      c.Storage.Mongo.URI,
			Database: c.Storage.Mongo.Database,
			Bucket:   c.Storage.Mongo.Bucket,
		},
		S3: storage.S3Config{
			Endpoint:  c.Storage.S3.Endpoint,
			Bucket:    c.Storage.S3.Bucket,
			AccessKey: c.Storage.S3.AccessKey,
			SecretKey: c.Storage.S3.SecretKey,
			Region:    c.Storage.S3.Region,
			UseSSL:    c.Storage.S3.UseSSL,
		},
	}
}

func (c *Config) RedisConfig() (auth.RedisConfig, bool) {
	return auth.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}, c.Redis.Addr != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
