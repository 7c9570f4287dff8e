package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	StoreMemory   = "memory"
	StoreDatabase = "database"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env       string `env:"ENV" env-default:"local"`
	HTTP      HTTPConfig
	Security  SecurityConfig
	Quotes    QuotesConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Portfolio PortfolioConfig
}

type HTTPConfig struct {
	Port            uint16        `env:"HTTP_PORT" env-default:"8080"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type SecurityConfig struct {
	SecretKey    string        `env:"SECRET_KEY" env-required:"true"`
	SessionTTL   time.Duration `env:"SESSION_TTL" env-default:"24h"`
	CookieName   string        `env:"SESSION_COOKIE" env-default:"session"`
	CookieSecure bool          `env:"COOKIE_SECURE" env-default:"false"`
}

type QuotesConfig struct {
	APIKey   string        `env:"ALPHA_VANTAGE_API_KEY" env-required:"true"`
	BaseURL  string        `env:"ALPHA_VANTAGE_URL" env-default:"https://www.alphavantage.co/query"`
	Timeout  time.Duration `env:"QUOTE_TIMEOUT" env-default:"5s"`
	CacheTTL time.Duration `env:"QUOTE_CACHE_TTL" env-default:"60s"`
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" env-default:"postgres"`
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     uint16 `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"postgres"`
	Password string `env:"DB_PASSWORD" env-default:"postgres"`
	Name     string `env:"DB_NAME" env-default:"stocks"`
}

// DSN returns DATABASE_URL when set. Otherwise sqlite gets a file named
// after DB_NAME and postgres a keyword DSN built from the parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	if c.Driver == DriverSQLite {
		return c.Name + ".db"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Enabled reports whether a redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type PortfolioConfig struct {
	Store string `env:"PORTFOLIO_STORE" env-default:"memory"`
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	return cfg
}

func (c *Config) validate() error {
	switch c.Portfolio.Store {
	case StoreMemory, StoreDatabase:
	default:
		return fmt.Errorf("config: unknown PORTFOLIO_STORE %q", c.Portfolio.Store)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.Quotes.CacheTTL < 0 {
		return fmt.Errorf("config: QUOTE_CACHE_TTL must not be negative")
	}

	return nil
}
