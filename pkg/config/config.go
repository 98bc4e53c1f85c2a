package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

const defaultJWTSecret = "dev_secret"

// Config is the runtime configuration read from the environment and an optional .env file.
type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Events   EventsConfig
	Reports  ReportsConfig
	Photos   PhotosConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	// AppName is reported to Postgres as application_name.
	AppName string
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + c.Host,
		"port=" + strconv.Itoa(c.Port),
		"user=" + c.User,
		"password=" + c.Password,
		"dbname=" + c.Name,
		"sslmode=" + c.SSLMode,
	}
	if c.AppName != "" {
		parts = append(parts, "application_name="+c.AppName)
	}
	return strings.Join(parts, " ")
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Addr is the host:port of the Redis server.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CacheConfig toggles caching of group announcement lists.
type CacheConfig struct {
	Enabled         bool
	AnnouncementTTL time.Duration
	// KeyPrefix namespaces every cache key in a shared Redis.
	KeyPrefix       string
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	SingleSession     bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EventsConfig configures MQTT publishing of child and group updates.
type EventsConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Workers     int
	Retries     int
	RetryDelay  time.Duration
}

// ReportsConfig gates the group day report export.
type ReportsConfig struct {
	Enabled bool
}

// PhotosConfig bounds base64 image uploads.
type PhotosConfig struct {
	MaxBytes int
}

// Load exports .env from the working directory, if present, to the process
// environment and reads the configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFile(".env")
}

// LoadFile reads settings from an env file and the environment, the
// environment taking precedence. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg := &Config{
		Env:       strings.ToLower(v.GetString("ENV")),
		Port:      v.GetInt("PORT"),
		APIPrefix: "/" + strings.Trim(v.GetString("API_PREFIX"), "/"),
		Timezone:  v.GetString("TIMEZONE"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			AppName:      v.GetString("DB_APP_NAME"),
		},
		Redis: RedisConfig{
			Host:        v.GetString("REDIS_HOST"),
			Port:        v.GetInt("REDIS_PORT"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 5*time.Second),
		},
		Cache: CacheConfig{
			Enabled:         v.GetBool("ENABLE_CACHE"),
			AnnouncementTTL: parseDuration(v.GetString("ANNOUNCEMENT_CACHE_TTL"), 10*time.Minute),
			KeyPrefix:       v.GetString("CACHE_KEY_PREFIX"),
		},
		JWT: JWTConfig{
			Secret:            v.GetString("JWT_SECRET"),
			Issuer:            v.GetString("JWT_ISSUER"),
			Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), time.Hour),
			RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 30*24*time.Hour),
			SingleSession:     v.GetBool("JWT_SINGLE_SESSION"),
		},
		CORS: CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Events: EventsConfig{
			Enabled:     v.GetBool("ENABLE_EVENTS"),
			Broker:      v.GetString("MQTT_BROKER"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			Username:    v.GetString("MQTT_USERNAME"),
			Password:    v.GetString("MQTT_PASSWORD"),
			TopicPrefix: strings.TrimRight(v.GetString("MQTT_TOPIC_PREFIX"), "/"),
			Workers:     v.GetInt("EVENTS_WORKERS"),
			Retries:     v.GetInt("EVENTS_RETRIES"),
			RetryDelay:  parseDuration(v.GetString("EVENTS_RETRY_DELAY"), 2*time.Second),
		},
		Reports: ReportsConfig{Enabled: v.GetBool("ENABLE_REPORTS")},
		Photos:  PhotosConfig{MaxBytes: v.GetInt("PHOTO_MAX_BYTES")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d out of range", c.Port))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q: %v", c.Timezone, err))
	}
	if c.JWT.Secret == "" {
		problems = append(problems, "JWT_SECRET is empty")
	}
	if c.Env == EnvProduction && c.JWT.Secret == defaultJWTSecret {
		problems = append(problems, "JWT_SECRET must be set in production")
	}
	if c.JWT.RefreshExpiration <= c.JWT.Expiration {
		problems = append(problems, "REFRESH_TOKEN_EXPIRATION must exceed JWT_EXPIRATION")
	}
	if c.Photos.MaxBytes <= 0 {
		problems = append(problems, "PHOTO_MAX_BYTES must be positive")
	}
	if c.Events.Enabled && c.Events.Broker == "" {
		problems = append(problems, "MQTT_BROKER is required when ENABLE_EVENTS is set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]interface{}{
		"ENV":        EnvDevelopment,
		"PORT":       8080,
		"API_PREFIX": "/api/v1",
		"TIMEZONE":   "Europe/Oslo",

		"DB_HOST":           "localhost",
		"DB_PORT":           5432,
		"DB_USER":           "postgres",
		"DB_PASSWORD":       "postgres",
		"DB_NAME":           "daycare",
		"DB_SSL_MODE":       "disable",
		"DB_MAX_OPEN_CONNS": 10,
		"DB_MAX_IDLE_CONNS": 5,
		"DB_APP_NAME":       "daycare-api",

		"REDIS_HOST":             "localhost",
		"REDIS_PORT":             6379,
		"REDIS_PASSWORD":         "",
		"REDIS_DB":               0,
		"REDIS_DIAL_TIMEOUT":     "5s",
		"ENABLE_CACHE":           false,
		"ANNOUNCEMENT_CACHE_TTL": "10m",
		"CACHE_KEY_PREFIX":       "daycare",

		"JWT_SECRET":               defaultJWTSecret,
		"JWT_ISSUER":               "daycare-api",
		"JWT_EXPIRATION":           "1h",
		"REFRESH_TOKEN_EXPIRATION": "720h",
		"JWT_SINGLE_SESSION":       false,

		"ALLOWED_ORIGINS": "",
		"LOG_LEVEL":       "info",
		"LOG_FORMAT":      "json",

		"ENABLE_EVENTS":      false,
		"MQTT_BROKER":        "tcp://localhost:1883",
		"MQTT_CLIENT_ID":     "daycare-api",
		"MQTT_USERNAME":      "",
		"MQTT_PASSWORD":      "",
		"MQTT_TOPIC_PREFIX":  "daycare",
		"EVENTS_WORKERS":     2,
		"EVENTS_RETRIES":     3,
		"EVENTS_RETRY_DELAY": "2s",

		"ENABLE_REPORTS":  true,
		"PHOTO_MAX_BYTES": 2 * 1024 * 1024,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
