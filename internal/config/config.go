package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8081"`
	Backend     string `envconfig:"BACKEND" default:"local"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"timestore-api"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	PostgresDSN  string        `envconfig:"POSTGRES_DSN"`
	KafkaBrokers []string      `envconfig:"KAFKA_BROKERS" default:"kafka:9092"`
	ChangesTopic string        `envconfig:"CHANGES_TOPIC" default:"timestore.changes"`
	JWTSecret    string        `envconfig:"JWT_SECRET"`
	TokenTTL     time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin"`
	APIKey        string `envconfig:"API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	// LogoutClearsCart unset means the backend decides.
	LogoutClearsCart *bool         `envconfig:"LOGOUT_CLEARS_CART"`
	SessionIdle      time.Duration `envconfig:"SESSION_IDLE" default:"30m"`
	AuthRateLimit    string        `envconfig:"AUTH_RATE_LIMIT" default:"10-M"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, errors.Wrap(err, "read environment")
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.KafkaBrokers = compact(c.KafkaBrokers)
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
	case BackendRemote:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the remote backend")
		}
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required for the remote backend")
		}
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the remote backend")
		}
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	return nil
}

// ClearCartOnLogout applies the backend default when LOGOUT_CLEARS_CART is unset.
func (c Config) ClearCartOnLogout() bool {
	if c.LogoutClearsCart != nil {
		return *c.LogoutClearsCart
	}
	return c.Backend == BackendRemote
}

// SetupLogging configures the standard logrus logger.
func (c Config) SetupLogging() {
	log.SetFormatter(&log.JSONFormatter{})
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
