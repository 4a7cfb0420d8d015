package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection URL.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

type Config struct {
	Addr            string
	Storage         string
	Postgres        Postgres
	AllowedOrigins  []string
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
	// Args holds the positional arguments left after flag parsing.
	Args []string
}

// Load reads an optional .env file, then flags whose defaults come from the
// environment. Flags win over environment variables.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}
	return parse(args, os.Getenv)
}

func parse(args []string, getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	var (
		cfg      Config
		origins  string
		logLevel string
		shutdown string
	)

	fs := flag.NewFlagSet("pollroom", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", env("ADDR", ":3001"), "HTTP listen address")
	fs.StringVar(&cfg.Storage, "storage", env("STORAGE", StorageMemory), "Poll storage (memory or postgres)")
	fs.StringVar(&cfg.Postgres.Host, "db-host", env("POSTGRES_HOST", "localhost"), "Database host")
	fs.StringVar(&cfg.Postgres.Port, "db-port", env("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&cfg.Postgres.User, "db-user", getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&cfg.Postgres.Password, "db-pass", getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&cfg.Postgres.DBName, "db-name", getenv("POSTGRES_DB"), "Database name")
	fs.StringVar(&cfg.Postgres.SSLMode, "db-sslmode", env("POSTGRES_SSLMODE", "disable"), "Database sslmode")
	fs.StringVar(&origins, "cors-origins", env("CORS_ALLOWED_ORIGINS", "*"), "Comma separated list of allowed origins")
	fs.StringVar(&logLevel, "log-level", env("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	fs.StringVar(&shutdown, "shutdown-timeout", env("SHUTDOWN_TIMEOUT", "30s"), "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.Postgres.User == "" || cfg.Postgres.DBName == "" {
			return Config{}, errors.New("postgres storage requires POSTGRES_USER and POSTGRES_DB (or -db-user and -db-name)")
		}
	default:
		return Config{}, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	d, err := time.ParseDuration(shutdown)
	if err != nil {
		return Config{}, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	cfg.ShutdownTimeout = d
	cfg.Args = fs.Args()

	return cfg, nil
}
