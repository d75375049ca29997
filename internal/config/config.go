package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/soaringjerry/valoracion/internal/services"
	"github.com/soaringjerry/valoracion/internal/utils"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset. Only for local use.
const DevJWTSecret = "v4l0r4c1on_s3cr3t_k3y_dev"

const (
	defaultAddr       = ":5000"
	defaultDSN        = "file:data/valoracion.sqlite?_busy_timeout=5000"
	defaultKafkaTopic = "valoracion.reviews"
)

type Config struct {
	Addr             string
	DBDriver         string
	DBDSN            string
	MigrationsDir    string
	JWTSecret        string
	AdminUsername    string
	AdminPassword    string
	BcryptCost       int
	MaxCommentLength int
	AllowedOrigins   []string
	StaticDir        string
	KafkaBrokers     []string
	KafkaTopic       string
	LogLevel         string
	LogFormat        string
	Commit           string
	BuildTime        string
}

// UsingDevSecret reports whether tokens are signed with the built-in secret.
func (c Config) UsingDevSecret() bool { return c.JWTSecret == DevJWTSecret }

// LoadDotEnv reads key=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration from the environment, then applies
// command-line flags on top.
func Load(args []string) (Config, error) {
	cfg := Config{
		Addr:             addrFromEnv(),
		DBDriver:         utils.SafeEnv("VALORACION_DB_DRIVER", "sqlite3"),
		DBDSN:            utils.SafeEnv("VALORACION_DB_DSN", defaultDSN),
		MigrationsDir:    utils.SafeEnv("VALORACION_MIGRATIONS_DIR", ""),
		JWTSecret:        utils.SafeEnv("JWT_SECRET", DevJWTSecret),
		AdminUsername:    utils.SafeEnv("VALORACION_ADMIN_USERNAME", services.DefaultAdminUsername),
		AdminPassword:    utils.SafeEnv("VALORACION_ADMIN_PASSWORD", services.DefaultAdminPassword),
		BcryptCost:       utils.EnvInt("VALORACION_BCRYPT_COST", services.DefaultBcryptCost),
		MaxCommentLength: utils.EnvInt("VALORACION_MAX_COMMENT_LENGTH", services.DefaultMaxCommentLength),
		AllowedOrigins:   utils.EnvList("VALORACION_ALLOWED_ORIGINS", []string{"*"}),
		StaticDir:        utils.SafeEnv("VALORACION_STATIC_DIR", ""),
		KafkaBrokers:     utils.EnvList("KAFKA_BROKERS", nil),
		KafkaTopic:       utils.SafeEnv("VALORACION_KAFKA_TOPIC", defaultKafkaTopic),
		LogLevel:         utils.SafeEnv("VALORACION_LOG_LEVEL", "info"),
		LogFormat:        utils.SafeEnv("VALORACION_LOG_FORMAT", "json"),
		Commit:           utils.SafeEnv("VALORACION_COMMIT", ""),
		BuildTime:        utils.SafeEnv("VALORACION_BUILD_TIME", ""),
	}

	fs := flag.NewFlagSet("valoracion", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver (sqlite3, postgres, mysql)")
	fs.StringVar(&cfg.DBDSN, "db", cfg.DBDSN, "database DSN")
	fs.StringVar(&cfg.MigrationsDir, "migrations", cfg.MigrationsDir, "directory overriding the embedded schema scripts")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "directory with the built frontend")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Addr = normaliseAddr(cfg.Addr)

	if cfg.MaxCommentLength <= 0 {
		return Config{}, errors.New("VALORACION_MAX_COMMENT_LENGTH must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("VALORACION_BCRYPT_COST %d out of range 4..31", cfg.BcryptCost)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return Config{}, fmt.Errorf("VALORACION_LOG_FORMAT must be json or console, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

func addrFromEnv() string {
	if v := utils.SafeEnv("VALORACION_ADDR", ""); v != "" {
		return v
	}
	if p := utils.SafeEnv("PORT", ""); p != "" {
		return p
	}
	return defaultAddr
}

// normaliseAddr accepts a bare port ("5000") as well as host:port.
func normaliseAddr(a string) string {
	a = strings.TrimSpace(a)
	if a == "" {
		return defaultAddr
	}
	if !strings.Contains(a, ":") {
		return ":" + a
	}
	return a
}
