package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	App  App
	HTTP HTTP
	DB   DB
	Auth Auth
	Vote Vote
}

type App struct {
	Environment string `env:"ENVIRONMENT" envDefault:"production"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c App) IsDevEnvironment() bool {
	return c.Environment == "dev"
}

type HTTP struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	TrustProxy      bool          `env:"TRUST_PROXY" envDefault:"false"`
}

func (c HTTP) Addr() string {
	return net.JoinHostPort("0.0.0.0", c.Port)
}

// DB is read from DATABASE_URL when set, otherwise from the POSTGRES_* parts.
type DB struct {
	URL             string        `env:"DATABASE_URL"`
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            string        `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
	Password        string        `env:"POSTGRES_PASSWORD"`
	Name            string        `env:"POSTGRES_DB" envDefault:"postgres"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

func (c DB) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

type Auth struct {
	JWTSecret     string        `env:"JWT_SECRET,notEmpty"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	AdminUsername string        `env:"ADMIN_USERNAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
}

// Vote limits how fast a single client address may submit votes.
type Vote struct {
	RatePerMinute float64 `env:"VOTE_RATE_PER_MINUTE" envDefault:"30"`
	Burst         int     `env:"VOTE_BURST" envDefault:"10"`
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (Config, error) {
	var config Config
	if err := parse(&config, files); err != nil {
		return Config{}, err
	}
	return config, nil
}

// LoadDB is Load for jobs that only need a database connection.
func LoadDB(files ...string) (DB, error) {
	var config DB
	if err := parse(&config, files); err != nil {
		return DB{}, err
	}
	return config, nil
}

func parse(target any, files []string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}
