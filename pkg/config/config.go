package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeDev      = "dev"

	ChatStoreFirestore = "firestore"
	ChatStorePostgres  = "postgres"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	FirebaseProject    string `env:"FIREBASE_PROJECT_ID"`
	FirebaseApiKey     string `env:"FIREBASE_API_KEY"`
	ServiceAccountPath string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	ServiceAccountJSON string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	StorageBucket      string `env:"STORAGE_BUCKET"`

	AuthMode  string        `env:"AUTH_MODE" envDefault:"firebase"`
	JWTSecret string        `env:"JWT_SECRET" envDefault:"your-secret-key"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	ChatStore   string `env:"CHAT_STORE" envDefault:"firestore"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	ProfileCacheSize int           `env:"PROFILE_CACHE_SIZE" envDefault:"1024"`
	ProfileCacheTTL  time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`
	UploadMaxBytes   int64         `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModeFirebase, AuthModeDev:
	default:
		return fmt.Errorf("config: AUTH_MODE must be %q or %q, got %q", AuthModeFirebase, AuthModeDev, c.AuthMode)
	}

	switch c.ChatStore {
	case ChatStoreFirestore:
	case ChatStorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("config: DATABASE_URL is required when CHAT_STORE=postgres")
		}
	default:
		return fmt.Errorf("config: CHAT_STORE must be %q or %q, got %q", ChatStoreFirestore, ChatStorePostgres, c.ChatStore)
	}

	if c.AuthMode == AuthModeDev && c.Environment != "development" {
		return fmt.Errorf("config: AUTH_MODE=dev is only allowed when ENVIRONMENT=development")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
