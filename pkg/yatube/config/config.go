package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds every runtime setting of the server.
type Config struct {
	Env     string `yaml:"env"`
	Port    string `yaml:"port"`
	BaseURL string `yaml:"base_url"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	JWTSecret         string `yaml:"jwt_secret"`
	SessionTTLHours   int    `yaml:"session_ttl_hours"`
	CookieSecure      bool   `yaml:"cookie_secure"`
	PostsPerPage      int    `yaml:"posts_per_page"`
	IndexCacheSeconds int    `yaml:"index_cache_seconds"`

	CacheBackend  string `yaml:"cache_backend"`
	CacheSize     int    `yaml:"cache_size"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	MediaBackend string `yaml:"media_backend"`
	MediaRoot    string `yaml:"media_root"`
	MediaURL     string `yaml:"media_url"`
	S3Bucket     string `yaml:"s3_bucket"`
	S3Region     string `yaml:"s3_region"`
	S3PublicURL  string `yaml:"s3_public_url"`
	MaxUploadMB  int    `yaml:"max_upload_mb"`

	LogLevel    string   `yaml:"log_level"`
	CORSOrigins []string `yaml:"cors_origins"`

	AdminUsername string `yaml:"admin_username"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Env:               DevEnv,
		Port:              "8080",
		BaseURL:           "http://localhost:8080",
		DBDriver:          "sqlite",
		DBDSN:             "yatube.db",
		JWTSecret:         "yatube-dev-secret-change-in-production",
		SessionTTLHours:   24 * 14,
		PostsPerPage:      10,
		IndexCacheSeconds: 20,
		CacheBackend:      "memory",
		CacheSize:         512,
		RedisAddr:         "localhost:6379",
		MediaBackend:      "local",
		MediaRoot:         "media",
		MediaURL:          "/media/",
		S3Region:          "us-west-1",
		MaxUploadMB:       5,
		LogLevel:          "info",
		AdminUsername:     "admin",
		AdminEmail:        "admin@yatube.local",
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// YATUBE_CONFIG, .env files and finally the process environment.
func Load() (*Config, error) {
	LoadDotEnvs("")

	cfg := Default()
	if path := os.Getenv("YATUBE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"YATUBE_ENV":     &c.Env,
		"PORT":           &c.Port,
		"BASE_URL":       &c.BaseURL,
		"DB_DRIVER":      &c.DBDriver,
		"DB_DSN":         &c.DBDSN,
		"JWT_SECRET":     &c.JWTSecret,
		"CACHE_BACKEND":  &c.CacheBackend,
		"REDIS_ADDR":     &c.RedisAddr,
		"REDIS_PASSWORD": &c.RedisPassword,
		"MEDIA_BACKEND":  &c.MediaBackend,
		"MEDIA_ROOT":     &c.MediaRoot,
		"MEDIA_URL":      &c.MediaURL,
		"S3_BUCKET":      &c.S3Bucket,
		"S3_REGION":      &c.S3Region,
		"S3_PUBLIC_URL":  &c.S3PublicURL,
		"LOG_LEVEL":      &c.LogLevel,
		"ADMIN_USERNAME": &c.AdminUsername,
		"ADMIN_EMAIL":    &c.AdminEmail,
		"ADMIN_PASSWORD": &c.AdminPassword,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SESSION_TTL_HOURS":   &c.SessionTTLHours,
		"POSTS_PER_PAGE":      &c.PostsPerPage,
		"INDEX_CACHE_SECONDS": &c.IndexCacheSeconds,
		"CACHE_SIZE":          &c.CacheSize,
		"REDIS_DB":            &c.RedisDB,
		"MAX_UPLOAD_MB":       &c.MaxUploadMB,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", key)
		}
		*dst = n
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "invalid COOKIE_SECURE")
		}
		c.CookieSecure = b
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return errors.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}
	switch c.MediaBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 media backend")
		}
	default:
		return errors.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend)
	}
	if c.PostsPerPage <= 0 {
		return errors.New("POSTS_PER_PAGE must be positive")
	}
	if c.IndexCacheSeconds < 0 {
		return errors.New("INDEX_CACHE_SECONDS must not be negative")
	}
	if c.Env == ProdEnv && c.JWTSecret == Default().JWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// IndexCacheTTL is how long the home listing is served from the page cache.
func (c *Config) IndexCacheTTL() time.Duration {
	return time.Duration(c.IndexCacheSeconds) * time.Second
}

// SessionTTL is the lifetime of a login token.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// MaxUploadBytes is the largest accepted image upload.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c *Config) IsProduction() bool {
	return c.Env == ProdEnv
}
