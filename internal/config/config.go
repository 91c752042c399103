package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Mail      MailConfig      `mapstructure:"mail"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the HTTP bind address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether error details may be exposed to clients
func (c ServerConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// IsProduction reports whether the server runs in production mode
func (c ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type StorageConfig struct {
	Driver   string         `mapstructure:"driver"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres DatabaseConfig `mapstructure:"postgres"`
	MySQL    SQLConfig      `mapstructure:"mysql"`
	SQLite   SQLConfig      `mapstructure:"sqlite"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	SSLMode       string `mapstructure:"ssl_mode"`
	MaxConns      int32  `mapstructure:"max_conns"`
	MinConns      int32  `mapstructure:"min_conns"`
	MigrationsURL string `mapstructure:"migrations_url"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// SQLConfig configures a database/sql backed store. For MySQL the DSN must
// carry parseTime=true.
type SQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	AccessTokenSecret  string        `mapstructure:"access_token_secret"`
	RefreshTokenSecret string        `mapstructure:"refresh_token_secret"`
	ResetTokenSecret   string        `mapstructure:"reset_token_secret"`
	AccessTokenTTL     time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `mapstructure:"refresh_token_ttl"`
	ResetTokenTTL      time.Duration `mapstructure:"reset_token_ttl"`
	BcryptCost         int           `mapstructure:"bcrypt_cost"`
	CookieName         string        `mapstructure:"cookie_name"`
	CookieSecure       bool          `mapstructure:"cookie_secure"`
	ResetURL           string        `mapstructure:"reset_url"`
}

type MailConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	SenderName   string `mapstructure:"sender_name"`
	SenderEmail  string `mapstructure:"sender_email"`
	ReplyToName  string `mapstructure:"reply_to_name"`
	ReplyToEmail string `mapstructure:"reply_to_email"`
}

type RateLimitConfig struct {
	LoginAttempts int           `mapstructure:"login_attempts"`
	Window        time.Duration `mapstructure:"window"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks invariants the rest of the service relies on
func (c *Config) Validate() error {
	secrets := map[string]string{
		"auth.access_token_secret":  c.Auth.AccessTokenSecret,
		"auth.refresh_token_secret": c.Auth.RefreshTokenSecret,
		"auth.reset_token_secret":   c.Auth.ResetTokenSecret,
	}
	for key, secret := range secrets {
		if secret == "" {
			return fmt.Errorf("config: %s is required", key)
		}
	}

	if c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret ||
		c.Auth.AccessTokenSecret == c.Auth.ResetTokenSecret ||
		c.Auth.RefreshTokenSecret == c.Auth.ResetTokenSecret {
		return errors.New("config: access, refresh and reset token secrets must differ")
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 || c.Auth.ResetTokenTTL <= 0 {
		return errors.New("config: token ttls must be positive")
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverMongo, DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Storage
	v.SetDefault("storage.driver", DriverMongo)
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.database", "auth")
	v.SetDefault("storage.mongo.collection", "users")
	v.SetDefault("storage.mongo.connect_timeout", "10s")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "auth")
	v.SetDefault("storage.postgres.database", "auth")
	v.SetDefault("storage.postgres.ssl_mode", "disable")
	v.SetDefault("storage.postgres.max_conns", 20)
	v.SetDefault("storage.postgres.min_conns", 2)
	v.SetDefault("storage.postgres.migrations_url", "file://migrations/postgres")
	v.SetDefault("storage.mysql.dsn", "auth:auth@tcp(localhost:3306)/auth?parseTime=true")
	v.SetDefault("storage.mysql.max_open_conns", 20)
	v.SetDefault("storage.sqlite.dsn", "file:auth.db?_pragma=busy_timeout(5000)")
	v.SetDefault("storage.sqlite.max_open_conns", 1)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.access_token_ttl", "24h")
	v.SetDefault("auth.refresh_token_ttl", "720h") // 30 days
	v.SetDefault("auth.reset_token_ttl", "15m")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.cookie_name", "jwt")
	v.SetDefault("auth.cookie_secure", true)
	v.SetDefault("auth.reset_url", "http://localhost:3500/reset-password")

	// Mail
	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.sender_name", "Auth Service")
	v.SetDefault("mail.sender_email", "info@auth-service.local")
	v.SetDefault("mail.reply_to_name", "Auth Service")
	v.SetDefault("mail.reply_to_email", "noreply@auth-service.local")

	// Rate limit
	v.SetDefault("rate_limit.login_attempts", 5)
	v.SetDefault("rate_limit.window", "1m")

	// CORS
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3500"})

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.dir", "")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.env", "NODE_ENV", "ENV")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.mongo.uri", "MONGO_URL")
	v.BindEnv("storage.postgres.password", "POSTGRES_PASSWORD")
	v.BindEnv("storage.mysql.dsn", "MYSQL_DSN")
	v.BindEnv("storage.sqlite.dsn", "SQLITE_DSN")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.access_token_secret", "JWT_ACCESS_TOKEN_SECRET_KEY")
	v.BindEnv("auth.refresh_token_secret", "JWT_REFRESH_TOKEN_SECRET_KEY")
	v.BindEnv("auth.reset_token_secret", "JWT_SECRET_KEY")
	v.BindEnv("auth.cookie_secure", "COOKIE_SECURE")

	// Mail
	v.BindEnv("mail.api_key", "MAILERSEND_API_KEY")
}
