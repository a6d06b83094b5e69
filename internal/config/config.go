package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is built once at startup and passed by reference to every
// component that needs it. Nothing in the core reads ambient state.
type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CatalogTTL    time.Duration

	JWTSecret   string
	TokenExpiry time.Duration

	// Quiz timing policy. HardLimit is the nominal exam duration; Grace
	// absorbs network latency and client auto-submit skew on top of it.
	HardLimit time.Duration
	Grace     time.Duration

	AdminEmail string

	CORSOrigins []string
}

// file mirrors the YAML layout on disk.
type file struct {
	Server struct {
		Addr        string `yaml:"addr"`
		CORSOrigins string `yaml:"cors_origins"`
	} `yaml:"server"`
	DB struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Auth struct {
		Secret        string `yaml:"secret"`
		ExpiryMinutes int    `yaml:"expiry_minutes"`
		AdminEmail    string `yaml:"admin_email"`
	} `yaml:"auth"`
	Quiz struct {
		HardLimit string `yaml:"hard_limit"`
		Grace     string `yaml:"grace"`
	} `yaml:"quiz"`
}

// Load reads the YAML file at path (a missing file is not an error) and
// applies environment overrides on top.
func Load(path string) (Config, error) {
	var f file
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &f); err != nil {
				return Config{}, err
			}
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	cfg := Config{
		HTTPAddr:      envOr("HTTP_ADDR", or(f.Server.Addr, ":8080")),
		DBDriver:      envOr("DB_DRIVER", or(f.DB.Driver, "sqlite")),
		DBDSN:         envOr("DB_DSN", f.DB.DSN),
		RedisAddr:     envOr("REDIS_ADDR", f.Redis.Addr),
		RedisPassword: envOr("REDIS_PASSWORD", f.Redis.Password),
		RedisDB:       envInt("REDIS_DB", f.Redis.DB),
		CatalogTTL:    duration(f.Redis.TTL, 10*time.Minute),
		JWTSecret:     envOr("JWT_SECRET", or(f.Auth.Secret, "supersecret-dev-key")),
		TokenExpiry:   time.Duration(envInt("TOKEN_EXPIRY_MINUTES", orInt(f.Auth.ExpiryMinutes, 60))) * time.Minute,
		HardLimit:     duration(envOr("QUIZ_HARD_LIMIT", f.Quiz.HardLimit), 20*time.Minute),
		Grace:         duration(envOr("QUIZ_GRACE", f.Quiz.Grace), 2*time.Minute),
		AdminEmail:    envOr("ADMIN_EMAIL", or(f.Auth.AdminEmail, "admin@kaaratech.com")),
		CORSOrigins:   csvOr("CORS_ORIGINS", or(f.Server.CORSOrigins, "http://localhost:3000")),
	}
	return cfg, nil
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func duration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
