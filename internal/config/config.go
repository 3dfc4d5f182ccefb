package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"9000"`
	GRPCPort    string `env:"GRPC_PORT" envDefault:"9001"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9100"`

	DB DB

	JWTSecret         string `env:"SUPABASE_JWT_SECRET"`
	AccessTokenCookie string `env:"ACCESS_TOKEN_COOKIE" envDefault:"sb-access-token"`

	LegacyPrefixMatch     bool `env:"ACCESS_LEGACY_PREFIX_MATCH" envDefault:"false"`
	RequireTrackingNumber bool `env:"SHIP_REQUIRE_TRACKING" envDefault:"false"`

	Kafka  Kafka
	Outbox Outbox

	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	HealthInterval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"10s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

type DB struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD"`
	Name     string `env:"POSTGRES_DB" envDefault:"postgres"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN renders a postgres:// URL so credentials with spaces or quotes survive.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"order_events"`
	GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"order-events-consumer-group"`
}

type Outbox struct {
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"20"`
	MaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"5"`
	ClaimLease   time.Duration `env:"OUTBOX_CLAIM_LEASE" envDefault:"5m"`
}

func (o Outbox) validate() error {
	switch {
	case o.PollInterval <= 0:
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive, got %s", o.PollInterval)
	case o.BatchSize <= 0:
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", o.BatchSize)
	case o.MaxAttempts <= 0:
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be positive, got %d", o.MaxAttempts)
	case o.ClaimLease <= 0:
		return fmt.Errorf("OUTBOX_CLAIM_LEASE must be positive, got %s", o.ClaimLease)
	}
	return nil
}

// Load reads the first .env file found near the working directory, then
// parses the environment into a Config. Variables already set in the
// environment win over the file.
func Load() (Config, error) {
	loadEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Outbox.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("Error getting working directory: %v", err)
		return
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}

	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf("Loaded environment variables from %s", envPath)
			return
		}
	}

	log.Println("No .env file found, using process environment")
}
