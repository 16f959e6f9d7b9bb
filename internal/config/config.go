package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

type DBConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	CatalogTTL time.Duration `yaml:"catalog_ttl"`
}

type MQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	Issuer string        `yaml:"issuer"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MetricsConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver string `yaml:"driver"`
	Seed   bool   `yaml:"seed"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	MQ        MQConfig        `yaml:"mq"`
	JWT       JWTConfig       `yaml:"jwt"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3000",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  5 * time.Second,
		},
		DB:        DBConfig{MaxConns: 25, MinConns: 5},
		Redis:     RedisConfig{CatalogTTL: 10 * time.Minute},
		MQ:        MQConfig{Exchange: "eco.events"},
		JWT:       JWTConfig{TTL: 24 * time.Hour, Issuer: "eco-challenge-api"},
		CORS:      CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 30},
		Log:       LogConfig{Level: "info"},
		Storage:   StorageConfig{Driver: "postgres", Seed: true},
	}
}

// Load builds the config from defaults, configDir/base.yaml, the optional
// configDir/<env>.yaml, a .env file and finally the process environment.
// Later sources win.
func Load(env, configDir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if configDir == "" {
		configDir = "config"
	}

	cfg := Default()
	if err := mergeYAMLFile(cfg, filepath.Join(configDir, "base.yaml")); err != nil {
		return nil, err
	}
	if env != "" && env != "base" {
		if err := mergeYAMLFile(cfg, filepath.Join(configDir, env+".yaml")); err != nil {
			return nil, err
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeYAMLFile decodes path over cfg. Missing files are skipped.
func mergeYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func overrideFromEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DB.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Redis.DB = n
		}
	}
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if user := os.Getenv("METRICS_USER"); user != "" {
		cfg.Metrics.User = user
	}
	if pass := os.Getenv("METRICS_PASS"); pass != "" {
		cfg.Metrics.Password = pass
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) is required"))
	}
	switch c.Storage.Driver {
	case "postgres":
		if c.DB.URL == "" {
			errs = append(errs, errors.New("db.url (DATABASE_URL) is required for the postgres driver"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit.rps and rate_limit.burst must be positive"))
	}
	return errors.Join(errs...)
}

// GetConfigEnv returns CONFIG_ENV, defaulting to local.
func GetConfigEnv() string {
	if env := os.Getenv("CONFIG_ENV"); env != "" {
		return env
	}
	return "local"
}
